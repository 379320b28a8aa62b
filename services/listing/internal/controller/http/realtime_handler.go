package http

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"estate-market/pkg/jwt"
	"estate-market/pkg/logger"
	"estate-market/pkg/middleware"
	"estate-market/pkg/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

var publicTables = []string{realtime.TableListings, realtime.TableListingImages, realtime.TableListingAmenities}

const writeWait = 10 * time.Second

type RealtimeHandler struct {
	hub           *realtime.Hub
	jwtService    *jwt.Service
	accountStatus middleware.AccountStatusFunc
	debounce      time.Duration
	logger        *logger.Logger
}

func NewRealtimeHandler(hub *realtime.Hub, jwtService *jwt.Service, accountStatus middleware.AccountStatusFunc, debounce time.Duration, logger *logger.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:           hub,
		jwtService:    jwtService,
		accountStatus: accountStatus,
		debounce:      debounce,
		logger:        logger,
	}
}

// checkAccount applies the suspension rule to a caller identified by the
// query token, which the route middleware never sees.
func (h *RealtimeHandler) checkAccount(c *gin.Context, userID string) bool {
	status, role, err := h.accountStatus(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("[REALTIME] Failed to check account %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check account status"})
		return false
	}
	if status == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Account not found", "code": "session_expired"})
		return false
	}
	if status == middleware.StatusSuspended && role != middleware.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account suspended"})
		return false
	}
	return true
}

// requestedTables parses ?tables=a,b. Unknown names are reported back.
func requestedTables(raw string) ([]string, string) {
	if raw == "" {
		return publicTables, ""
	}
	var tables []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		known := false
		for _, watched := range realtime.WatchedTables {
			if name == watched {
				known = true
				break
			}
		}
		if !known {
			return nil, name
		}
		tables = append(tables, name)
	}
	if len(tables) == 0 {
		return publicTables, ""
	}
	return tables, ""
}

func needsAuth(tables []string) bool {
	for _, t := range tables {
		if t == realtime.TableInquiries {
			return true
		}
	}
	return false
}

// HandleWebSocket godoc
// @Summary      Stream table change events
// @Description  Upgrades to a websocket that receives batches of change events for the requested tables. Listing tables are public; inquiries needs a token.
// @Tags         realtime
// @Param        tables query string false "Comma separated tables (listings, listing_images, listing_amenities, inquiries)"
// @Param        token query string false "JWT, for browsers that cannot set headers"
// @Success      101  {string}  string  "Switching Protocols"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /realtime/ws [get]
func (h *RealtimeHandler) HandleWebSocket(c *gin.Context) {
	tables, unknown := requestedTables(c.Query("tables"))
	if unknown != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown table: " + unknown})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		if token := c.Query("token"); token != "" {
			claims, err := h.jwtService.ValidateTokenContext(c.Request.Context(), token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				return
			}
			if !h.checkAccount(c, claims.UserID) {
				return
			}
			userID = claims.UserID
		}
	}
	if userID == "" && needsAuth(tables) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("[REALTIME] Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	h.logger.Info("[REALTIME] WebSocket connected user=%q tables=%v", userID, tables)

	var (
		mu      sync.Mutex
		pending []realtime.Event
		writeMu sync.Mutex
	)
	flush := func() {
		mu.Lock()
		batch := pending
		pending = nil
		mu.Unlock()
		if len(batch) == 0 {
			return
		}

		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(gin.H{"events": batch}); err != nil {
			h.logger.Warn("[REALTIME] Failed to write WebSocket message: %v", err)
		}
	}

	debouncer := realtime.Debounce(h.debounce, flush)
	sub := h.hub.Subscribe(tables, func(event realtime.Event) {
		mu.Lock()
		pending = append(pending, event)
		mu.Unlock()
		debouncer.Trigger()
	})
	defer func() {
		sub.Unsubscribe()
		debouncer.Stop()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("[REALTIME] WebSocket read error: %v", err)
			}
			break
		}
	}

	h.logger.Info("[REALTIME] WebSocket disconnected user=%q", userID)
}
