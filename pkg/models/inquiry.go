package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InquiryStatus string

const (
	InquiryNew     InquiryStatus = "new"
	InquiryRead    InquiryStatus = "read"
	InquiryReplied InquiryStatus = "replied"
	InquiryClosed  InquiryStatus = "closed"
)

type Inquiry struct {
	ID           string        `gorm:"type:uuid;primary_key" json:"id"`
	ListingID    string        `gorm:"type:uuid;not null;index" json:"listing_id"`
	BuyerID      string        `gorm:"type:uuid;not null;index" json:"buyer_id"`
	SellerID     string        `gorm:"type:uuid;not null;index" json:"seller_id"`
	Message      string        `gorm:"not null" json:"message"`
	ContactPhone string        `json:"contact_phone"`
	ContactEmail string        `json:"contact_email"`
	Status       InquiryStatus `gorm:"type:varchar(20);default:'new'" json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}
