package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListingModel struct {
	ID             string              `gorm:"type:uuid;primary_key" json:"id"`
	SellerID       string              `gorm:"type:uuid;not null;index" json:"seller_id"`
	Title          string              `gorm:"type:varchar(255);not null" json:"title"`
	Description    string              `gorm:"type:text" json:"description"`
	PriceCents     int64               `gorm:"not null" json:"price_cents"`
	PropertyType   string              `gorm:"type:varchar(20);not null" json:"property_type"`
	ListingType    string              `gorm:"type:varchar(10);not null" json:"listing_type"`
	Street         string              `gorm:"type:varchar(255)" json:"street"`
	City           string              `gorm:"type:varchar(120);index" json:"city"`
	State          string              `gorm:"type:varchar(120);index" json:"state"`
	PostalCode     string              `gorm:"type:varchar(20)" json:"postal_code"`
	Latitude       *float64            `json:"latitude"`
	Longitude      *float64            `json:"longitude"`
	Bedrooms       int                 `gorm:"default:0" json:"bedrooms"`
	Bathrooms      float64             `gorm:"type:numeric(4,1);default:0" json:"bathrooms"`
	SquareFeet     int                 `json:"square_feet"`
	LotSize        int                 `json:"lot_size"`
	YearBuilt      int                 `json:"year_built"`
	ContactName    string              `gorm:"type:varchar(120)" json:"contact_name"`
	ContactPhone   string              `gorm:"type:varchar(40)" json:"contact_phone"`
	ContactEmail   string              `gorm:"type:varchar(255)" json:"contact_email"`
	Status         string              `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	Featured       bool                `gorm:"default:false" json:"featured"`
	ViewsCount     int64               `gorm:"default:0" json:"views_count"`
	InquiriesCount int64               `gorm:"default:0" json:"inquiries_count"`
	PublishedAt    *time.Time          `json:"published_at"`
	ExpiresAt      *time.Time          `json:"expires_at"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Images         []ListingImageModel `gorm:"foreignKey:ListingID" json:"images,omitempty"`
	Amenities      []AmenityModel      `gorm:"many2many:listing_amenities;joinForeignKey:ListingID;joinReferences:AmenityID" json:"amenities,omitempty"`
	Seller         *SellerModel        `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
}

func (ListingModel) TableName() string {
	return "listings"
}

func (l *ListingModel) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

type ListingImageModel struct {
	ID           string    `gorm:"type:uuid;primary_key" json:"id"`
	ListingID    string    `gorm:"type:uuid;not null;index" json:"listing_id"`
	StorageKey   string    `gorm:"type:varchar(500);not null" json:"storage_key"`
	URL          string    `gorm:"type:varchar(1000);not null" json:"url"`
	AltText      string    `gorm:"type:varchar(255)" json:"alt_text"`
	IsFeatured   bool      `gorm:"default:false" json:"is_featured"`
	DisplayOrder int       `gorm:"default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

func (ListingImageModel) TableName() string {
	return "listing_images"
}

func (li *ListingImageModel) BeforeCreate(tx *gorm.DB) error {
	if li.ID == "" {
		li.ID = uuid.New().String()
	}
	return nil
}

type AmenityModel struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`
	Category  string    `gorm:"type:varchar(60)" json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func (AmenityModel) TableName() string {
	return "amenities"
}

func (a *AmenityModel) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

type ListingAmenityModel struct {
	ListingID string `gorm:"type:uuid;primaryKey"`
	AmenityID string `gorm:"type:uuid;primaryKey"`
}

func (ListingAmenityModel) TableName() string {
	return "listing_amenities"
}
