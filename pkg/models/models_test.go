package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUser_BeforeCreate(t *testing.T) {
	user := &User{
		Email:    "test@example.com",
		Name:     "Test User",
		Password: "password",
		Role:     RoleBuyer,
	}

	err := user.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}

func TestUser_BeforeCreate_WithID(t *testing.T) {
	existingID := "existing-id-123"
	user := &User{ID: existingID, Email: "test@example.com"}

	err := user.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.Equal(t, existingID, user.ID)
}

func TestListing_BeforeCreate(t *testing.T) {
	listing := &Listing{
		SellerID:     "seller-123",
		Title:        "Two bed flat",
		PriceCents:   25000000,
		PropertyType: "apartment",
		ListingType:  "sale",
		Status:       ListingDraft,
	}

	err := listing.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, listing.ID)
}

func TestListing_BeforeCreate_WithID(t *testing.T) {
	listing := &Listing{ID: "existing-listing-id"}

	err := listing.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.Equal(t, "existing-listing-id", listing.ID)
}

func TestRelatedModels_BeforeCreate(t *testing.T) {
	image := &ListingImage{ListingID: "listing-1", StorageKey: "listings/a.jpg"}
	amenity := &Amenity{Name: "Pool"}
	inquiry := &Inquiry{ListingID: "listing-1", BuyerID: "b", SellerID: "s", Message: "hi"}

	assert.NoError(t, image.BeforeCreate(nil))
	assert.NoError(t, amenity.BeforeCreate(nil))
	assert.NoError(t, inquiry.BeforeCreate(nil))

	assert.NotEmpty(t, image.ID)
	assert.NotEmpty(t, amenity.ID)
	assert.NotEmpty(t, inquiry.ID)
	assert.NotEqual(t, image.ID, amenity.ID)
}

func TestListingAmenity_TableName(t *testing.T) {
	assert.Equal(t, "listing_amenities", ListingAmenity{}.TableName())
}

func TestStatusConstants(t *testing.T) {
	assert.Equal(t, ListingStatus("draft"), ListingDraft)
	assert.Equal(t, ListingStatus("rejected"), ListingRejected)
	assert.Equal(t, InquiryStatus("new"), InquiryNew)
	assert.Equal(t, AccountStatus("suspended"), AccountSuspended)
	assert.Equal(t, UserRole("seller"), RoleSeller)
}
