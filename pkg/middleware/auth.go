package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"estate-market/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"

	StatusSuspended = "suspended"
)

// AccountStatusFunc reports the stored status and role of an account.
// An empty status means the account is unknown.
type AccountStatusFunc func(ctx context.Context, userID string) (status string, role string, err error)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortWithTokenError(c *gin.Context, err error) {
	// Expired and revoked sessions get a distinct code so clients clear local
	// state and sign in again instead of showing a raw error.
	if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenRevoked) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired", "code": "session_expired"})
		c.Abort()
		return
	}
	if errors.Is(err, jwt.ErrTokenInvalid) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "code": "invalid_token"})
		c.Abort()
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate session"})
	c.Abort()
}

func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateTokenContext(c.Request.Context(), token)
		if err != nil {
			abortWithTokenError(c, err)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		c.Set("claims", claims)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a valid token is present and
// lets anonymous requests through otherwise.
func OptionalAuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := jwtService.ValidateTokenContext(c.Request.Context(), token)
		if err != nil {
			abortWithTokenError(c, err)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_role", claims.Role)
		c.Set("claims", claims)
		c.Next()
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("user_role")
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		c.Abort()
	}
}

// AccountStatusMiddleware blocks suspended accounts. Admins are exempt, and the
// stored role wins over the token role so a demoted admin is not exempt.
func AccountStatusMiddleware(lookup AccountStatusFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.Next()
			return
		}

		status, role, err := lookup(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check account status"})
			c.Abort()
			return
		}
		if status == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account not found", "code": "session_expired"})
			c.Abort()
			return
		}
		if role != "" {
			c.Set("user_role", role)
		}
		if status == StatusSuspended && role != RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account suspended"})
			c.Abort()
			return
		}

		c.Next()
	}
}
