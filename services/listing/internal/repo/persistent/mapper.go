package persistent

import (
	"estate-market/services/listing/internal/entity"
	"estate-market/services/listing/internal/model"
)

func ToListingEntity(m *model.ListingModel) *entity.Listing {
	if m == nil {
		return nil
	}

	listing := &entity.Listing{
		ID:             m.ID,
		SellerID:       m.SellerID,
		Title:          m.Title,
		Description:    m.Description,
		PriceCents:     m.PriceCents,
		PropertyType:   entity.PropertyType(m.PropertyType),
		ListingType:    entity.ListingType(m.ListingType),
		Street:         m.Street,
		City:           m.City,
		State:          m.State,
		PostalCode:     m.PostalCode,
		Latitude:       m.Latitude,
		Longitude:      m.Longitude,
		Bedrooms:       m.Bedrooms,
		Bathrooms:      m.Bathrooms,
		SquareFeet:     m.SquareFeet,
		LotSize:        m.LotSize,
		YearBuilt:      m.YearBuilt,
		ContactName:    m.ContactName,
		ContactPhone:   m.ContactPhone,
		ContactEmail:   m.ContactEmail,
		Status:         entity.Status(m.Status),
		Featured:       m.Featured,
		ViewsCount:     m.ViewsCount,
		InquiriesCount: m.InquiriesCount,
		PublishedAt:    m.PublishedAt,
		ExpiresAt:      m.ExpiresAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		Images:         make([]entity.ListingImage, 0, len(m.Images)),
		Amenities:      make([]entity.Amenity, 0, len(m.Amenities)),
	}

	for i := range m.Images {
		listing.Images = append(listing.Images, ToImageEntity(&m.Images[i]))
	}
	for i := range m.Amenities {
		listing.Amenities = append(listing.Amenities, ToAmenityEntity(&m.Amenities[i]))
	}
	if m.Seller != nil {
		listing.Seller = &entity.SellerSummary{
			ID:       m.Seller.ID,
			Name:     m.Seller.Name,
			Email:    m.Seller.Email,
			Phone:    m.Seller.Phone,
			Verified: m.Seller.Verified,
		}
	}

	return listing
}

// ToListingModel maps the listing row only; relations are written separately.
func ToListingModel(e *entity.Listing) *model.ListingModel {
	if e == nil {
		return nil
	}

	return &model.ListingModel{
		ID:             e.ID,
		SellerID:       e.SellerID,
		Title:          e.Title,
		Description:    e.Description,
		PriceCents:     e.PriceCents,
		PropertyType:   string(e.PropertyType),
		ListingType:    string(e.ListingType),
		Street:         e.Street,
		City:           e.City,
		State:          e.State,
		PostalCode:     e.PostalCode,
		Latitude:       e.Latitude,
		Longitude:      e.Longitude,
		Bedrooms:       e.Bedrooms,
		Bathrooms:      e.Bathrooms,
		SquareFeet:     e.SquareFeet,
		LotSize:        e.LotSize,
		YearBuilt:      e.YearBuilt,
		ContactName:    e.ContactName,
		ContactPhone:   e.ContactPhone,
		ContactEmail:   e.ContactEmail,
		Status:         string(e.Status),
		Featured:       e.Featured,
		ViewsCount:     e.ViewsCount,
		InquiriesCount: e.InquiriesCount,
		PublishedAt:    e.PublishedAt,
		ExpiresAt:      e.ExpiresAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func ToImageEntity(m *model.ListingImageModel) entity.ListingImage {
	if m == nil {
		return entity.ListingImage{}
	}

	return entity.ListingImage{
		ID:           m.ID,
		ListingID:    m.ListingID,
		StorageKey:   m.StorageKey,
		URL:          m.URL,
		AltText:      m.AltText,
		IsFeatured:   m.IsFeatured,
		DisplayOrder: m.DisplayOrder,
		CreatedAt:    m.CreatedAt,
	}
}

func ToImageModel(e *entity.ListingImage) *model.ListingImageModel {
	if e == nil {
		return nil
	}

	return &model.ListingImageModel{
		ID:           e.ID,
		ListingID:    e.ListingID,
		StorageKey:   e.StorageKey,
		URL:          e.URL,
		AltText:      e.AltText,
		IsFeatured:   e.IsFeatured,
		DisplayOrder: e.DisplayOrder,
		CreatedAt:    e.CreatedAt,
	}
}

func ToAmenityEntity(m *model.AmenityModel) entity.Amenity {
	if m == nil {
		return entity.Amenity{}
	}
	return entity.Amenity{ID: m.ID, Name: m.Name, Category: m.Category}
}
