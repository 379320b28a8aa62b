package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"estate-market/pkg/jwt"
	"estate-market/pkg/logger"
	"estate-market/services/auth/internal/entity"
	"estate-market/services/auth/internal/repo/persistent"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// TokenService issues and revokes access tokens. *jwt.Service satisfies it.
type TokenService interface {
	GenerateToken(userID, role string) (string, error)
	Revoke(ctx context.Context, claims *jwt.Claims) error
}

type AuthUseCase interface {
	Register(ctx context.Context, input entity.RegisterInput) (*entity.User, string, error)
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	Refresh(ctx context.Context, claims *jwt.Claims) (*entity.User, string, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID string, patch entity.ProfilePatch) (*entity.User, error)
	ListUsers(ctx context.Context, filter entity.UserFilter, limit, offset int) ([]*entity.User, int64, error)
	SetStatus(ctx context.Context, actorID, userID string, status entity.AccountStatus) (*entity.User, error)
	SetVerified(ctx context.Context, userID string, verified bool) (*entity.User, error)
}

type authUseCase struct {
	userRepo     persistent.UserRepository
	tokenService TokenService
	logger       *logger.Logger
	cost         int
}

func NewAuthUseCase(
	userRepo persistent.UserRepository,
	tokenService TokenService,
	logger *logger.Logger,
) AuthUseCase {
	return &authUseCase{
		userRepo:     userRepo,
		tokenService: tokenService,
		logger:       logger,
		cost:         bcrypt.DefaultCost,
	}
}

func (uc *authUseCase) issue(user *entity.User) (*entity.User, string, error) {
	token, err := uc.tokenService.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		uc.logger.Error("[AUTH] Failed to generate token for %s: %v", user.ID, err)
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	user.Password = ""
	return user, token, nil
}

func (uc *authUseCase) Register(ctx context.Context, input entity.RegisterInput) (*entity.User, string, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, "", err
	}

	if _, err := uc.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, "", entity.ErrEmailTaken
	} else if !errors.Is(err, entity.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), uc.cost)
	if err != nil {
		uc.logger.Error("[AUTH] Failed to hash password: %v", err)
		return nil, "", fmt.Errorf("failed to process registration: %w", err)
	}

	user := &entity.User{
		Email:    input.Email,
		Name:     input.Name,
		Phone:    input.Phone,
		Password: string(hashedPassword),
		Role:     input.Role,
		Status:   entity.StatusActive,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, entity.ErrEmailTaken) {
			return nil, "", err
		}
		uc.logger.Error("[AUTH] Failed to create user: %v", err)
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	uc.logger.Info("[AUTH] Registered %s %s", user.Role, user.ID)
	return uc.issue(user)
}

func (uc *authUseCase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, entity.ErrNotFound) {
		return nil, "", entity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", entity.ErrInvalidCredentials
	}

	if !user.CanSignIn() {
		uc.logger.Warn("[AUTH] Suspended account %s tried to sign in", user.ID)
		return nil, "", entity.ErrAccountSuspended
	}

	return uc.issue(user)
}

func (uc *authUseCase) Logout(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil {
		return entity.ErrForbidden
	}
	if err := uc.tokenService.Revoke(ctx, claims); err != nil {
		uc.logger.Error("[AUTH] Failed to revoke token for %s: %v", claims.UserID, err)
		return fmt.Errorf("failed to sign out: %w", err)
	}
	uc.logger.Info("[AUTH] Signed out %s", claims.UserID)
	return nil
}

// Refresh swaps a valid token for a fresh one carrying the user's current
// role. The old token is revoked when revocation is available.
func (uc *authUseCase) Refresh(ctx context.Context, claims *jwt.Claims) (*entity.User, string, error) {
	if claims == nil {
		return nil, "", entity.ErrForbidden
	}
	user, err := uc.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, "", err
	}
	if !user.CanSignIn() {
		return nil, "", entity.ErrAccountSuspended
	}

	user, token, err := uc.issue(user)
	if err != nil {
		return nil, "", err
	}
	if err := uc.tokenService.Revoke(ctx, claims); err != nil {
		uc.logger.Warn("[AUTH] Refreshed %s without revoking the old token: %v", user.ID, err)
	}
	return user, token, nil
}

func (uc *authUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

func (uc *authUseCase) UpdateProfile(ctx context.Context, userID string, patch entity.ProfilePatch) (*entity.User, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", entity.ErrInvalidInput)
		}
		patch.Name = &name
	}
	if patch.Phone != nil {
		phone := strings.TrimSpace(*patch.Phone)
		patch.Phone = &phone
	}

	if err := uc.userRepo.UpdateProfile(ctx, userID, patch); err != nil {
		return nil, err
	}
	return uc.GetUser(ctx, userID)
}

func (uc *authUseCase) ListUsers(ctx context.Context, filter entity.UserFilter, limit, offset int) ([]*entity.User, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", entity.ErrInvalidInput, filter.Status)
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := uc.userRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, u := range users {
		u.Password = ""
	}
	return users, total, nil
}

func (uc *authUseCase) SetStatus(ctx context.Context, actorID, userID string, status entity.AccountStatus) (*entity.User, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", entity.ErrInvalidInput, status)
	}
	if actorID == userID && status == entity.StatusSuspended {
		return nil, fmt.Errorf("%w: cannot suspend your own account", entity.ErrForbidden)
	}

	if err := uc.userRepo.UpdateStatus(ctx, userID, status); err != nil {
		return nil, err
	}
	uc.logger.Info("[AUTH] %s set account %s to %s", actorID, userID, status)
	return uc.GetUser(ctx, userID)
}

func (uc *authUseCase) SetVerified(ctx context.Context, userID string, verified bool) (*entity.User, error) {
	if err := uc.userRepo.SetVerified(ctx, userID, verified); err != nil {
		return nil, err
	}
	return uc.GetUser(ctx, userID)
}
