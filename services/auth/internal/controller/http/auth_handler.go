package http

import (
	"errors"
	"net/http"
	"strconv"

	"estate-market/pkg/jwt"
	"estate-market/pkg/logger"
	"estate-market/services/auth/internal/entity"
	"estate-market/services/auth/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUseCase usecase.AuthUseCase
	logger      *logger.Logger
}

func NewAuthHandler(authUseCase usecase.AuthUseCase, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

func (h *AuthHandler) respondError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, entity.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrAccountSuspended):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "account_suspended"})
	case errors.Is(err, entity.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("[AUTH] %s: %v", message, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}

func claimsFrom(c *gin.Context) *jwt.Claims {
	claims, _ := c.Get("claims")
	typed, _ := claims.(*jwt.Claims)
	return typed
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required,max=100"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"omitempty,oneof=buyer seller"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type VerifyRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// Register godoc
// @Summary      Register a new user
// @Description  Register a buyer or seller account and return a JWT token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration data"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authUseCase.Register(c.Request.Context(), entity.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     entity.UserRole(req.Role),
	})
	if err != nil {
		h.respondError(c, err, "Failed to register")
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Token: token,
		User:  user,
	})
}

// Login godoc
// @Summary      Login user
// @Description  Authenticate user and return JWT token. Suspended accounts are refused.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authUseCase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err, "Failed to sign in")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: token,
		User:  user,
	})
}

// Logout godoc
// @Summary      Logout
// @Description  Revoke the current token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authUseCase.Logout(c.Request.Context(), claimsFrom(c)); err != nil {
		h.respondError(c, err, "Failed to sign out")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// Refresh godoc
// @Summary      Refresh token
// @Description  Exchange the current token for a new one with the account's current role
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  AuthResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	user, token, err := h.authUseCase.Refresh(c.Request.Context(), claimsFrom(c))
	if err != nil {
		h.respondError(c, err, "Failed to refresh token")
		return
	}
	c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
}

// Me godoc
// @Summary      Get current user info
// @Description  Get information about the currently authenticated user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  entity.User
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.authUseCase.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateMe godoc
// @Summary      Update profile
// @Description  Update the name and phone of the current user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body ProfileRequest true "Profile fields"
// @Success      200  {object}  entity.User
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /me [put]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authUseCase.UpdateProfile(c.Request.Context(), c.GetString("user_id"), entity.ProfilePatch{
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		h.respondError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers godoc
// @Summary      List users
// @Description  Admin listing of accounts, newest first
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        role query string false "Role" Enums(buyer, seller, admin)
// @Param        status query string false "Account status" Enums(active, suspended, pending)
// @Param        search query string false "Substring of email or name"
// @Param        limit query int false "Page size (max 100)"
// @Param        offset query int false "Offset for pagination"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /admin/users [get]
func (h *AuthHandler) ListUsers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}

	users, total, err := h.authUseCase.ListUsers(c.Request.Context(), entity.UserFilter{
		Role:   entity.UserRole(c.Query("role")),
		Status: entity.AccountStatus(c.Query("status")),
		Search: c.Query("search"),
	}, limit, offset)
	if err != nil {
		h.respondError(c, err, "Failed to list users")
		return
	}
	if users == nil {
		users = []*entity.User{}
	}

	c.JSON(http.StatusOK, gin.H{
		"users":  users,
		"count":  len(users),
		"total":  total,
		"offset": offset,
	})
}

// UpdateUserStatus godoc
// @Summary      Change account status
// @Description  Suspend or reactivate an account. Suspended non-admins are refused on every service.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Param        request body StatusRequest true "New status"
// @Success      200  {object}  entity.User
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/users/{id}/status [patch]
func (h *AuthHandler) UpdateUserStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authUseCase.SetStatus(c.Request.Context(), c.GetString("user_id"), c.Param("id"), entity.AccountStatus(req.Status))
	if err != nil {
		h.respondError(c, err, "Failed to update account status")
		return
	}
	c.JSON(http.StatusOK, user)
}

// VerifyUser godoc
// @Summary      Verify account
// @Description  Set or clear the verified badge of an account
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Param        request body VerifyRequest true "Verified flag"
// @Success      200  {object}  entity.User
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/users/{id}/verify [patch]
func (h *AuthHandler) VerifyUser(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authUseCase.SetVerified(c.Request.Context(), c.Param("id"), *req.Verified)
	if err != nil {
		h.respondError(c, err, "Failed to update verification")
		return
	}
	c.JSON(http.StatusOK, user)
}
