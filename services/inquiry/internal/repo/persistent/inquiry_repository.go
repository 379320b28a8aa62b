package persistent

import (
	"context"
	"errors"

	"estate-market/services/inquiry/internal/entity"
	"estate-market/services/inquiry/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InquiryRepository interface {
	Create(ctx context.Context, inquiry *entity.Inquiry) error
	GetByID(ctx context.Context, id string) (*entity.Inquiry, error)
	ListByBuyer(ctx context.Context, buyerID string, status entity.Status, limit, offset int) ([]*entity.Inquiry, int64, error)
	ListBySeller(ctx context.Context, sellerID string, status entity.Status, limit, offset int) ([]*entity.Inquiry, int64, error)
	UpdateStatus(ctx context.Context, id string, from, to entity.Status) error
}

type inquiryRepository struct {
	db *gorm.DB
}

func NewInquiryRepository(db *gorm.DB) InquiryRepository {
	return &inquiryRepository{db: db}
}

// Create files the inquiry against an active listing. The seller is copied
// from the listing and inquiries_count is bumped in the same transaction.
func (r *inquiryRepository) Create(ctx context.Context, inquiry *entity.Inquiry) error {
	row := ToInquiryModel(inquiry)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing model.ListingRef
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Select("id", "seller_id", "title", "status").
			Where("id = ?", row.ListingID).
			First(&listing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.ErrNotFound
		}
		if err != nil {
			return err
		}
		if listing.Status != "active" {
			return entity.ErrListingNotActive
		}

		row.SellerID = listing.SellerID
		row.Status = string(entity.StatusNew)
		if err := tx.Omit(clause.Associations).Create(row).Error; err != nil {
			return err
		}

		row.Listing = &listing
		return tx.Model(&model.ListingRef{ID: listing.ID}).
			UpdateColumn("inquiries_count", gorm.Expr("inquiries_count + ?", 1)).Error
	})
	if err != nil {
		return err
	}

	*inquiry = *ToInquiryEntity(row)
	return nil
}

func (r *inquiryRepository) GetByID(ctx context.Context, id string) (*entity.Inquiry, error) {
	var row model.InquiryModel
	err := r.db.WithContext(ctx).Preload("Listing").Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ToInquiryEntity(&row), nil
}

func (r *inquiryRepository) list(ctx context.Context, column, userID string, status entity.Status, limit, offset int) ([]*entity.Inquiry, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.InquiryModel{}).Where(column+" = ?", userID)
	if status != "" {
		db = db.Where("status = ?", string(status))
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.InquiryModel
	if err := db.Preload("Listing").
		Order("created_at DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	inquiries := make([]*entity.Inquiry, 0, len(rows))
	for i := range rows {
		inquiries = append(inquiries, ToInquiryEntity(&rows[i]))
	}
	return inquiries, total, nil
}

func (r *inquiryRepository) ListByBuyer(ctx context.Context, buyerID string, status entity.Status, limit, offset int) ([]*entity.Inquiry, int64, error) {
	return r.list(ctx, "buyer_id", buyerID, status, limit, offset)
}

func (r *inquiryRepository) ListBySeller(ctx context.Context, sellerID string, status entity.Status, limit, offset int) ([]*entity.Inquiry, int64, error) {
	return r.list(ctx, "seller_id", sellerID, status, limit, offset)
}

// UpdateStatus only applies when the stored status is still `from`, so two
// racing updates cannot move an inquiry backwards.
func (r *inquiryRepository) UpdateStatus(ctx context.Context, id string, from, to entity.Status) error {
	res := r.db.WithContext(ctx).
		Model(&model.InquiryModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entity.ErrInvalidTransition
	}
	return nil
}
