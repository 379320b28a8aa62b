package entity

import (
	"io"
	"time"
)

type PropertyType string

const (
	PropertyHouse      PropertyType = "house"
	PropertyApartment  PropertyType = "apartment"
	PropertyCondo      PropertyType = "condo"
	PropertyStudio     PropertyType = "studio"
	PropertyCommercial PropertyType = "commercial"
	PropertyLand       PropertyType = "land"
)

func (p PropertyType) Valid() bool {
	switch p {
	case PropertyHouse, PropertyApartment, PropertyCondo, PropertyStudio, PropertyCommercial, PropertyLand:
		return true
	}
	return false
}

type ListingType string

const (
	ListingRent ListingType = "rent"
	ListingSale ListingType = "sale"
)

func (t ListingType) Valid() bool {
	return t == ListingRent || t == ListingSale
}

type Listing struct {
	ID             string         `json:"id"`
	SellerID       string         `json:"seller_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	PriceCents     int64          `json:"price_cents"`
	PropertyType   PropertyType   `json:"property_type"`
	ListingType    ListingType    `json:"listing_type"`
	Street         string         `json:"street"`
	City           string         `json:"city"`
	State          string         `json:"state"`
	PostalCode     string         `json:"postal_code"`
	Latitude       *float64       `json:"latitude,omitempty"`
	Longitude      *float64       `json:"longitude,omitempty"`
	Bedrooms       int            `json:"bedrooms"`
	Bathrooms      float64        `json:"bathrooms"`
	SquareFeet     int            `json:"square_feet"`
	LotSize        int            `json:"lot_size"`
	YearBuilt      int            `json:"year_built"`
	ContactName    string         `json:"contact_name"`
	ContactPhone   string         `json:"contact_phone"`
	ContactEmail   string         `json:"contact_email"`
	Status         Status         `json:"status"`
	Featured       bool           `json:"featured"`
	ViewsCount     int64          `json:"views_count"`
	InquiriesCount int64          `json:"inquiries_count"`
	Images         []ListingImage `json:"images"`
	Amenities      []Amenity      `json:"amenities"`
	Seller         *SellerSummary `json:"seller,omitempty"`
	PublishedAt    *time.Time     `json:"published_at,omitempty"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type ListingImage struct {
	ID           string    `json:"id"`
	ListingID    string    `json:"listing_id"`
	StorageKey   string    `json:"-"`
	URL          string    `json:"url"`
	AltText      string    `json:"alt_text,omitempty"`
	IsFeatured   bool      `json:"is_featured"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

type Amenity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// SellerSummary is the owning account as embedded in listing responses.
type SellerSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Verified bool   `json:"verified"`
}

// ImageUpload is an image waiting to be stored. Open is called at most once.
type ImageUpload struct {
	Filename    string
	ContentType string
	AltText     string
	Open        func() (io.ReadCloser, error)
}

// Viewer is whoever is making the call. An empty UserID is an anonymous visitor.
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

func (v Viewer) Owns(l *Listing) bool {
	return v.UserID != "" && l != nil && l.SellerID == v.UserID
}

func (v Viewer) CanManage(l *Listing) bool {
	return v.IsAdmin() || v.Owns(l)
}
