package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListingStatus string

const (
	ListingDraft     ListingStatus = "draft"
	ListingPending   ListingStatus = "pending"
	ListingActive    ListingStatus = "active"
	ListingSold      ListingStatus = "sold"
	ListingRented    ListingStatus = "rented"
	ListingSuspended ListingStatus = "suspended"
	ListingRejected  ListingStatus = "rejected"
)

type Listing struct {
	ID             string         `gorm:"type:uuid;primary_key" json:"id"`
	SellerID       string         `gorm:"type:uuid;not null;index" json:"seller_id"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `json:"description"`
	PriceCents     int64          `gorm:"not null" json:"price_cents"`
	PropertyType   string         `gorm:"type:varchar(20);not null" json:"property_type"`
	ListingType    string         `gorm:"type:varchar(10);not null" json:"listing_type"`
	Street         string         `json:"street"`
	City           string         `gorm:"index" json:"city"`
	State          string         `gorm:"index" json:"state"`
	PostalCode     string         `json:"postal_code"`
	Latitude       *float64       `json:"latitude,omitempty"`
	Longitude      *float64       `json:"longitude,omitempty"`
	Bedrooms       int            `gorm:"default:0" json:"bedrooms"`
	Bathrooms      float64        `gorm:"default:0" json:"bathrooms"`
	SquareFeet     int            `json:"square_feet"`
	LotSize        int            `json:"lot_size"`
	YearBuilt      int            `json:"year_built"`
	ContactName    string         `json:"contact_name"`
	ContactPhone   string         `json:"contact_phone"`
	ContactEmail   string         `json:"contact_email"`
	Status         ListingStatus  `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	Featured       bool           `gorm:"default:false" json:"featured"`
	ViewsCount     int64          `gorm:"default:0" json:"views_count"`
	InquiriesCount int64          `gorm:"default:0" json:"inquiries_count"`
	Images         []ListingImage `gorm:"foreignKey:ListingID" json:"images"`
	Amenities      []Amenity      `gorm:"many2many:listing_amenities;joinForeignKey:ListingID;joinReferences:AmenityID" json:"amenities"`
	PublishedAt    *time.Time     `json:"published_at,omitempty"`
	ExpiresAt      *time.Time     `json:"expires_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

type ListingImage struct {
	ID           string    `gorm:"type:uuid;primary_key" json:"id"`
	ListingID    string    `gorm:"type:uuid;not null;index" json:"listing_id"`
	StorageKey   string    `gorm:"not null" json:"storage_key"`
	URL          string    `gorm:"not null" json:"url"`
	AltText      string    `json:"alt_text"`
	IsFeatured   bool      `gorm:"default:false" json:"is_featured"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

func (li *ListingImage) BeforeCreate(tx *gorm.DB) error {
	if li.ID == "" {
		li.ID = uuid.New().String()
	}
	return nil
}

type Amenity struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Amenity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

type ListingAmenity struct {
	ListingID string `gorm:"type:uuid;primaryKey" json:"listing_id"`
	AmenityID string `gorm:"type:uuid;primaryKey" json:"amenity_id"`
}

func (ListingAmenity) TableName() string {
	return "listing_amenities"
}
