package entity

import "time"

const (
	NotificationNewInquiry    = "new_inquiry"
	NotificationInquiryStatus = "inquiry_status"
)

// Notification is an inbox entry for a buyer or seller.
type Notification struct {
	UserID       string    `json:"user_id"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	InquiryID    string    `json:"inquiry_id"`
	ListingID    string    `json:"listing_id"`
	ListingTitle string    `json:"listing_title,omitempty"`
	ActorID      string    `json:"actor_id"`
	Status       Status    `json:"status,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
