package jwt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRevocations struct {
	mu  sync.Mutex
	ids map[string]time.Duration
}

func newMemoryRevocations() *memoryRevocations {
	return &memoryRevocations{ids: make(map[string]time.Duration)}
}

func (m *memoryRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[tokenID] = ttl
	return nil
}

func (m *memoryRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[tokenID]
	return ok, nil
}

func TestNewService(t *testing.T) {
	secretKey := "test-secret-key"
	service := NewService(secretKey)

	assert.NotNil(t, service)
	assert.Equal(t, []byte(secretKey), service.secretKey)
	assert.Equal(t, defaultTTL, service.ttl)
}

func TestGenerateAndValidateToken_RoundTrip(t *testing.T) {
	service := NewService("test-secret-key")

	token, err := service.GenerateToken("user-456", "seller")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-456", claims.UserID)
	assert.Equal(t, "seller", claims.Role)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, time.Now().Before(claims.ExpiresAt.Time))
}

func TestValidateToken_InvalidToken(t *testing.T) {
	service := NewService("test-secret-key")

	_, err := service.ValidateToken("invalid-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateToken_EmptyToken(t *testing.T) {
	service := NewService("test-secret-key")

	_, err := service.ValidateToken("")
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	service1 := NewService("secret-key-1")
	service2 := NewService("secret-key-2")

	token, err := service1.GenerateToken("user-123", "buyer")
	require.NoError(t, err)

	_, err = service2.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	service := NewServiceWithTTL("test-secret-key", time.Nanosecond)

	token, err := service.GenerateToken("user-123", "buyer")
	require.NoError(t, err)

	// jwt NumericDate has second precision
	time.Sleep(1100 * time.Millisecond)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateTokenContext_Revoked(t *testing.T) {
	revocations := newMemoryRevocations()
	service := NewService("test-secret-key").WithRevocations(revocations)
	ctx := context.Background()

	token, err := service.GenerateToken("user-123", "buyer")
	require.NoError(t, err)

	claims, err := service.ValidateTokenContext(ctx, token)
	require.NoError(t, err)

	require.NoError(t, service.Revoke(ctx, claims))

	_, err = service.ValidateTokenContext(ctx, token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// The stateless check does not know about sign-out.
	_, err = service.ValidateToken(token)
	assert.NoError(t, err)
}

func TestRevoke_WithoutRevocationList(t *testing.T) {
	service := NewService("test-secret-key")

	token, err := service.GenerateToken("user-123", "buyer")
	require.NoError(t, err)
	claims, err := service.ValidateToken(token)
	require.NoError(t, err)

	assert.Error(t, service.Revoke(context.Background(), claims))
}

func TestGenerateToken_EmptyValues(t *testing.T) {
	service := NewService("test-secret-key")

	token, err := service.GenerateToken("", "")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "", claims.UserID)
	assert.Equal(t, "", claims.Role)
}
