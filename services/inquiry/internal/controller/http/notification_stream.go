package http

import (
	"net/http"
	"time"

	"estate-market/pkg/jwt"
	"estate-market/pkg/logger"
	"estate-market/pkg/middleware"
	"estate-market/services/inquiry/internal/entity"
	"estate-market/services/inquiry/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const writeWait = 10 * time.Second

type NotificationStreamHandler struct {
	notificationUseCase usecase.NotificationUseCase
	jwtService          *jwt.Service
	accountStatus       middleware.AccountStatusFunc
	logger              *logger.Logger
}

func NewNotificationStreamHandler(notificationUseCase usecase.NotificationUseCase, jwtService *jwt.Service, accountStatus middleware.AccountStatusFunc, logger *logger.Logger) *NotificationStreamHandler {
	return &NotificationStreamHandler{
		notificationUseCase: notificationUseCase,
		jwtService:          jwtService,
		accountStatus:       accountStatus,
		logger:              logger,
	}
}

// caller resolves the user from the route middleware or, for browsers that
// cannot set headers, from ?token=. Query-token callers get the suspension
// check here.
func (h *NotificationStreamHandler) caller(c *gin.Context) (entity.Viewer, bool) {
	if userID := c.GetString("user_id"); userID != "" {
		return entity.Viewer{UserID: userID, Role: c.GetString("user_role")}, true
	}

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return entity.Viewer{}, false
	}
	claims, err := h.jwtService.ValidateTokenContext(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return entity.Viewer{}, false
	}

	status, role, err := h.accountStatus(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("[NOTIFIER] Failed to check account %s: %v", claims.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check account status"})
		return entity.Viewer{}, false
	}
	if status == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account not found", "code": "session_expired"})
		return entity.Viewer{}, false
	}
	if status == middleware.StatusSuspended && role != middleware.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account suspended"})
		return entity.Viewer{}, false
	}
	return entity.Viewer{UserID: claims.UserID, Role: role}, true
}

// HandleWebSocket godoc
// @Summary      Stream my notifications
// @Description  Upgrades to a websocket that receives each new notification as it is delivered
// @Tags         notifications
// @Security     BearerAuth
// @Param        token query string false "JWT, for browsers that cannot set headers"
// @Success      101  {string}  string  "Switching Protocols"
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /me/notifications/ws [get]
func (h *NotificationStreamHandler) HandleWebSocket(c *gin.Context) {
	viewer, ok := h.caller(c)
	if !ok {
		return
	}

	live, stop, err := h.notificationUseCase.Watch(c.Request.Context(), viewer)
	if err != nil {
		h.logger.Error("[NOTIFIER] Failed to watch notifications for %s: %v", viewer.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to watch notifications"})
		return
	}
	defer stop()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("[NOTIFIER] Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	h.logger.Info("[NOTIFIER] WebSocket connected for user %s", viewer.UserID)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case n, open := <-live:
				if !open {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(n); err != nil {
					h.logger.Warn("[NOTIFIER] Failed to write WebSocket message: %v", err)
					return
				}
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("[NOTIFIER] WebSocket read error: %v", err)
			}
			break
		}
	}

	close(done)
	h.logger.Info("[NOTIFIER] WebSocket disconnected for user %s", viewer.UserID)
}
