package entity

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type UserRole string

const (
	RoleBuyer  UserRole = "buyer"
	RoleSeller UserRole = "seller"
	RoleAdmin  UserRole = "admin"
)

type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusSuspended AccountStatus = "suspended"
	StatusPending   AccountStatus = "pending"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusPending:
		return true
	}
	return false
}

type User struct {
	ID        string        `json:"id"`
	Email     string        `json:"email"`
	Name      string        `json:"name"`
	Phone     string        `json:"phone"`
	Password  string        `json:"-"`
	Role      UserRole      `json:"role"`
	Status    AccountStatus `json:"status"`
	Verified  bool          `json:"verified"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// CanSignIn is false for suspended accounts. Admins are never locked out.
func (u *User) CanSignIn() bool {
	return u.Role == RoleAdmin || u.Status != StatusSuspended
}

const minPasswordLength = 6

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     UserRole
}

// Normalize trims the input, lowercases the email and defaults the role to buyer.
func (in *RegisterInput) Normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Role == "" {
		in.Role = RoleBuyer
	}
}

func (in RegisterInput) Validate() error {
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Role != RoleBuyer && in.Role != RoleSeller {
		return fmt.Errorf("%w: role must be buyer or seller", ErrInvalidInput)
	}
	return nil
}

type ProfilePatch struct {
	Name  *string
	Phone *string
}

type UserFilter struct {
	Role   UserRole
	Status AccountStatus
	Search string
}
