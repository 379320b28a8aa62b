package persistent

import (
	"estate-market/services/inquiry/internal/entity"
	"estate-market/services/inquiry/internal/model"
)

func ToInquiryEntity(m *model.InquiryModel) *entity.Inquiry {
	if m == nil {
		return nil
	}
	inquiry := &entity.Inquiry{
		ID:           m.ID,
		ListingID:    m.ListingID,
		BuyerID:      m.BuyerID,
		SellerID:     m.SellerID,
		Message:      m.Message,
		ContactPhone: m.ContactPhone,
		ContactEmail: m.ContactEmail,
		Status:       entity.Status(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Listing != nil {
		inquiry.ListingTitle = m.Listing.Title
	}
	return inquiry
}

func ToInquiryModel(e *entity.Inquiry) *model.InquiryModel {
	if e == nil {
		return nil
	}
	return &model.InquiryModel{
		ID:           e.ID,
		ListingID:    e.ListingID,
		BuyerID:      e.BuyerID,
		SellerID:     e.SellerID,
		Message:      e.Message,
		ContactPhone: e.ContactPhone,
		ContactEmail: e.ContactEmail,
		Status:       string(e.Status),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
