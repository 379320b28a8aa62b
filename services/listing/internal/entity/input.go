package entity

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ListingInput carries the fields of a new listing. A zero Status means draft.
type ListingInput struct {
	Title        string
	Description  string
	PriceCents   int64
	PropertyType PropertyType
	ListingType  ListingType
	Street       string
	City         string
	State        string
	PostalCode   string
	Latitude     *float64
	Longitude    *float64
	Bedrooms     int
	Bathrooms    float64
	SquareFeet   int
	LotSize      int
	YearBuilt    int
	ContactName  string
	ContactPhone string
	ContactEmail string
	Status       Status
	ExpiresAt    *time.Time
	AmenityIDs   []string
}

func (in ListingInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if err := validatePrice(in.PriceCents); err != nil {
		return err
	}
	if !in.PropertyType.Valid() {
		return fmt.Errorf("%w: unknown property type %q", ErrInvalidInput, in.PropertyType)
	}
	if !in.ListingType.Valid() {
		return fmt.Errorf("%w: unknown listing type %q", ErrInvalidInput, in.ListingType)
	}
	if err := validateRooms(in.Bedrooms, in.Bathrooms); err != nil {
		return err
	}
	if in.Status != "" && !in.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, in.Status)
	}
	return nil
}

// ListingPatch holds the fields an update touches. Nil fields are left alone;
// a nil AmenityIDs keeps the current amenities while an empty slice clears them.
type ListingPatch struct {
	Title        *string
	Description  *string
	PriceCents   *int64
	PropertyType *PropertyType
	ListingType  *ListingType
	Street       *string
	City         *string
	State        *string
	PostalCode   *string
	Latitude     *float64
	Longitude    *float64
	Bedrooms     *int
	Bathrooms    *float64
	SquareFeet   *int
	LotSize      *int
	YearBuilt    *int
	ContactName  *string
	ContactPhone *string
	ContactEmail *string
	ExpiresAt    *time.Time
	AmenityIDs   *[]string
}

func (p ListingPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}
	if p.PriceCents != nil {
		if err := validatePrice(*p.PriceCents); err != nil {
			return err
		}
	}
	if p.PropertyType != nil && !p.PropertyType.Valid() {
		return fmt.Errorf("%w: unknown property type %q", ErrInvalidInput, *p.PropertyType)
	}
	if p.ListingType != nil && !p.ListingType.Valid() {
		return fmt.Errorf("%w: unknown listing type %q", ErrInvalidInput, *p.ListingType)
	}
	bedrooms, bathrooms := 0, 0.0
	if p.Bedrooms != nil {
		bedrooms = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		bathrooms = *p.Bathrooms
	}
	return validateRooms(bedrooms, bathrooms)
}

// Columns maps the set fields to their column names.
func (p ListingPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	setString := func(name string, v *string) {
		if v != nil {
			cols[name] = *v
		}
	}
	setInt := func(name string, v *int) {
		if v != nil {
			cols[name] = *v
		}
	}

	setString("title", p.Title)
	setString("description", p.Description)
	if p.PriceCents != nil {
		cols["price_cents"] = *p.PriceCents
	}
	if p.PropertyType != nil {
		cols["property_type"] = string(*p.PropertyType)
	}
	if p.ListingType != nil {
		cols["listing_type"] = string(*p.ListingType)
	}
	setString("street", p.Street)
	setString("city", p.City)
	setString("state", p.State)
	setString("postal_code", p.PostalCode)
	if p.Latitude != nil {
		cols["latitude"] = *p.Latitude
	}
	if p.Longitude != nil {
		cols["longitude"] = *p.Longitude
	}
	setInt("bedrooms", p.Bedrooms)
	if p.Bathrooms != nil {
		cols["bathrooms"] = *p.Bathrooms
	}
	setInt("square_feet", p.SquareFeet)
	setInt("lot_size", p.LotSize)
	setInt("year_built", p.YearBuilt)
	setString("contact_name", p.ContactName)
	setString("contact_phone", p.ContactPhone)
	setString("contact_email", p.ContactEmail)
	if p.ExpiresAt != nil {
		cols["expires_at"] = *p.ExpiresAt
	}
	return cols
}

func validatePrice(cents int64) error {
	if cents <= 0 {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	return nil
}

func validateRooms(bedrooms int, bathrooms float64) error {
	if bedrooms < 0 {
		return fmt.Errorf("%w: bedrooms cannot be negative", ErrInvalidInput)
	}
	if bathrooms < 0 {
		return fmt.Errorf("%w: bathrooms cannot be negative", ErrInvalidInput)
	}
	if math.Mod(bathrooms*2, 1) != 0 {
		return fmt.Errorf("%w: bathrooms must be a multiple of 0.5", ErrInvalidInput)
	}
	return nil
}
