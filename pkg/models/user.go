package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleBuyer  UserRole = "buyer"
	RoleSeller UserRole = "seller"
	RoleAdmin  UserRole = "admin"
)

type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
	AccountPending   AccountStatus = "pending"
)

type User struct {
	ID        string        `gorm:"type:uuid;primary_key" json:"id"`
	Email     string        `gorm:"uniqueIndex;not null" json:"email"`
	Name      string        `gorm:"not null" json:"name"`
	Phone     string        `json:"phone"`
	Password  string        `gorm:"not null" json:"-"`
	Role      UserRole      `gorm:"type:varchar(20);default:'buyer'" json:"role"`
	Status    AccountStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	Verified  bool          `gorm:"default:false" json:"verified"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
