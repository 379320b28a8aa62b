package entity

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusNew     Status = "new"
	StatusRead    Status = "read"
	StatusReplied Status = "replied"
	StatusClosed  Status = "closed"
)

// rank orders statuses; an inquiry only ever moves forward.
var rank = map[Status]int{
	StatusNew:     0,
	StatusRead:    1,
	StatusReplied: 2,
	StatusClosed:  3,
}

func (s Status) Valid() bool {
	_, ok := rank[s]
	return ok
}

type Inquiry struct {
	ID           string    `json:"id"`
	ListingID    string    `json:"listing_id"`
	ListingTitle string    `json:"listing_title,omitempty"`
	BuyerID      string    `json:"buyer_id"`
	SellerID     string    `json:"seller_id"`
	Message      string    `json:"message"`
	ContactPhone string    `json:"contact_phone,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

const maxMessageLength = 5000

type InquiryInput struct {
	Message      string
	ContactPhone string
	ContactEmail string
}

func (in InquiryInput) Validate() error {
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if len(msg) > maxMessageLength {
		return fmt.Errorf("%w: message is longer than %d characters", ErrInvalidInput, maxMessageLength)
	}
	if in.ContactEmail != "" && !strings.Contains(in.ContactEmail, "@") {
		return fmt.Errorf("%w: contact email is not valid", ErrInvalidInput)
	}
	return nil
}

// Viewer is the authenticated caller.
type Viewer struct {
	UserID string
	Role   string
}

const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

func (v Viewer) IsAdmin() bool {
	return v.Role == RoleAdmin
}

// IsParty reports whether v sent or received the inquiry.
func (v Viewer) IsParty(i *Inquiry) bool {
	return v.UserID != "" && (i.BuyerID == v.UserID || i.SellerID == v.UserID)
}

// CheckStatusChange validates moving i to status `to` on behalf of v. The
// seller may mark an inquiry read, replied or closed; the buyer may only
// close it. Statuses never move backwards.
func CheckStatusChange(i *Inquiry, to Status, v Viewer) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, to)
	}
	if !v.IsAdmin() && !v.IsParty(i) {
		return ErrForbidden
	}
	if rank[to] <= rank[i.Status] {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.Status, to)
	}

	switch {
	case v.IsAdmin(), v.UserID == i.SellerID:
		return nil
	case to == StatusClosed:
		return nil
	default:
		return fmt.Errorf("%w: buyers can only close an inquiry", ErrForbidden)
	}
}
