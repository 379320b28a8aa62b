package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InquiryModel struct {
	ID           string `gorm:"type:uuid;primary_key"`
	ListingID    string `gorm:"type:uuid;not null;index"`
	BuyerID      string `gorm:"type:uuid;not null;index"`
	SellerID     string `gorm:"type:uuid;not null;index"`
	Message      string `gorm:"not null"`
	ContactPhone string
	ContactEmail string
	Status       string      `gorm:"type:varchar(20);default:'new'"`
	Listing      *ListingRef `gorm:"foreignKey:ListingID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (InquiryModel) TableName() string {
	return "inquiries"
}

func (m *InquiryModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// ListingRef is the part of a listing an inquiry needs.
type ListingRef struct {
	ID             string `gorm:"type:uuid;primary_key"`
	SellerID       string
	Title          string
	Status         string
	InquiriesCount int64
}

func (ListingRef) TableName() string {
	return "listings"
}
