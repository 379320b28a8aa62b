package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"estate-market/pkg/jwt"
	"estate-market/pkg/logger"
	"estate-market/pkg/middleware"
	"estate-market/services/inquiry/internal/entity"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func accountsWith(status, role string) middleware.AccountStatusFunc {
	return func(context.Context, string) (string, string, error) {
		return status, role, nil
	}
}

func newStreamServer(t *testing.T, accounts middleware.AccountStatusFunc) (*httptest.Server, *MockNotificationUseCase, *jwt.Service) {
	t.Helper()
	notifications := new(MockNotificationUseCase)
	jwtService := jwt.NewService("test-secret-key")
	handler := NewNotificationStreamHandler(notifications, jwtService, accounts, logger.New())

	router := setupTestRouter()
	router.GET("/me/notifications/ws", handler.HandleWebSocket)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, notifications, jwtService
}

func streamURL(server *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/me/notifications/ws?token=" + token
}

func TestNotificationStream_DeliversLiveNotifications(t *testing.T) {
	server, notifications, jwtService := newStreamServer(t, accountsWith("active", "seller"))
	token, err := jwtService.GenerateToken("seller-1", "seller")
	require.NoError(t, err)

	live := make(chan entity.Notification, 1)
	var stopped int32
	stop := func() { atomic.StoreInt32(&stopped, 1) }
	notifications.On("Watch", mock.Anything, entity.Viewer{UserID: "seller-1", Role: "seller"}).
		Return((<-chan entity.Notification)(live), stop, nil)

	conn, _, err := websocket.DefaultDialer.Dial(streamURL(server, token), nil)
	require.NoError(t, err)

	live <- entity.Notification{UserID: "seller-1", InquiryID: "inq-1", Title: "New inquiry"}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got entity.Notification
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "inq-1", got.InquiryID)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&stopped) == 1 }, time.Second, 5*time.Millisecond)
}

func TestNotificationStream_TokenRequired(t *testing.T) {
	server, notifications, _ := newStreamServer(t, accountsWith("active", "seller"))

	resp, err := http.Get(server.URL + "/me/notifications/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(server.URL + "/me/notifications/ws?token=garbage")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	notifications.AssertNotCalled(t, "Watch", mock.Anything, mock.Anything)
}

func TestNotificationStream_SuspendedRejected(t *testing.T) {
	server, notifications, jwtService := newStreamServer(t, accountsWith("suspended", "seller"))
	token, err := jwtService.GenerateToken("seller-1", "seller")
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/me/notifications/ws?token=" + token)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	notifications.AssertNotCalled(t, "Watch", mock.Anything, mock.Anything)
}

func TestNotificationStream_UnknownAccount(t *testing.T) {
	server, _, jwtService := newStreamServer(t, accountsWith("", ""))
	token, err := jwtService.GenerateToken("ghost", "buyer")
	require.NoError(t, err)

	resp, err := http.Get(server.URL + "/me/notifications/ws?token=" + token)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNotificationStream_WatchFails(t *testing.T) {
	server, notifications, jwtService := newStreamServer(t, accountsWith("active", "buyer"))
	token, err := jwtService.GenerateToken("buyer-1", "buyer")
	require.NoError(t, err)
	notifications.On("Watch", mock.Anything, mock.Anything).Return(nil, nil, errors.New("redis down"))

	resp, err := http.Get(server.URL + "/me/notifications/ws?token=" + token)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
