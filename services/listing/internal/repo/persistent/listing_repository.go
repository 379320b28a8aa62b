package persistent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"estate-market/services/listing/internal/entity"
	"estate-market/services/listing/internal/model"
	"estate-market/services/listing/internal/search"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ListingRepository interface {
	List(ctx context.Context, q search.Query) ([]*entity.Listing, int64, error)
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	Create(ctx context.Context, listing *entity.Listing) error
	Update(ctx context.Context, id string, columns map[string]interface{}) error
	UpdateStatus(ctx context.Context, id string, status entity.Status, publishedAt *time.Time) error
	SetFeatured(ctx context.Context, id string, featured bool) error
	Delete(ctx context.Context, id string) error
	ReplaceAmenities(ctx context.Context, listingID string, amenityIDs []string) error
	AddImage(ctx context.Context, image *entity.ListingImage) error
	GetImage(ctx context.Context, listingID, imageID string) (*entity.ListingImage, error)
	DeleteImage(ctx context.Context, listingID, imageID string) error
	SetFeaturedImage(ctx context.Context, listingID, imageID string) error
	IncrementViews(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) ([]entity.StatusCount, error)
	ListAmenities(ctx context.Context) ([]entity.Amenity, error)
	CreateAmenity(ctx context.Context, amenity *entity.Amenity) error
}

type listingRepository struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("listing_images.display_order ASC")
		}).
		Preload("Amenities", func(db *gorm.DB) *gorm.DB {
			return db.Order("amenities.name ASC")
		}).
		Preload("Seller")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func (r *listingRepository) filtered(ctx context.Context, q search.Query) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&model.ListingModel{})

	if !q.AllStatuses && q.Status != "" {
		db = db.Where("listings.status = ?", string(q.Status))
	}
	if q.SellerID != "" {
		db = db.Where("listings.seller_id = ?", q.SellerID)
	}
	if q.Featured != nil {
		db = db.Where("listings.featured = ?", *q.Featured)
	}
	if q.Search != "" {
		p := likePattern(q.Search)
		db = db.Where("(listings.title ILIKE ? OR listings.city ILIKE ? OR listings.state ILIKE ?)", p, p, p)
	}
	if q.PropertyType != "" {
		db = db.Where("listings.property_type = ?", string(q.PropertyType))
	}
	if q.ListingType != "" {
		db = db.Where("listings.listing_type = ?", string(q.ListingType))
	}
	if q.Bedrooms != nil {
		db = db.Where("listings.bedrooms >= ?", *q.Bedrooms)
	}
	if q.MinBathrooms != nil {
		db = db.Where("listings.bathrooms >= ?", *q.MinBathrooms)
	}
	if q.PriceMin != nil {
		db = db.Where("listings.price_cents >= ?", *q.PriceMin)
	}
	if q.PriceMax != nil {
		db = db.Where("listings.price_cents <= ?", *q.PriceMax)
	}
	if q.City != "" {
		db = db.Where("listings.city ILIKE ?", likePattern(q.City))
	}
	if q.State != "" {
		db = db.Where("listings.state ILIKE ?", likePattern(q.State))
	}
	if q.Location != "" {
		p := likePattern(q.Location)
		db = db.Where("(listings.city ILIKE ? OR listings.state ILIKE ? OR listings.postal_code ILIKE ?)", p, p, p)
	}
	return db
}

func (r *listingRepository) List(ctx context.Context, q search.Query) ([]*entity.Listing, int64, error) {
	var total int64
	if err := r.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.ListingModel
	err := r.filtered(ctx, q).
		Scopes(withRelations).
		Order(search.OrderClause(q.Sort)).
		Limit(q.Limit).
		Offset(q.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	listings := make([]*entity.Listing, len(rows))
	for i := range rows {
		listings[i] = ToListingEntity(&rows[i])
	}
	return listings, total, nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	var row model.ListingModel
	err := r.db.WithContext(ctx).Scopes(withRelations).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ToListingEntity(&row), nil
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	row := ToListingModel(listing)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error; err != nil {
		return err
	}

	listing.ID = row.ID
	listing.CreatedAt = row.CreatedAt
	listing.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *listingRepository) Update(ctx context.Context, id string, columns map[string]interface{}) error {
	if len(columns) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.ListingModel{ID: id}).Updates(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *listingRepository) UpdateStatus(ctx context.Context, id string, status entity.Status, publishedAt *time.Time) error {
	columns := map[string]interface{}{"status": string(status)}
	if publishedAt != nil {
		columns["published_at"] = *publishedAt
	}
	return r.Update(ctx, id, columns)
}

func (r *listingRepository) SetFeatured(ctx context.Context, id string, featured bool) error {
	return r.Update(ctx, id, map[string]interface{}{"featured": featured})
}

// Delete removes image rows, amenity links and the listing in one transaction.
// Stored image objects must already be gone.
func (r *listingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&model.ListingImageModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete images: %w", err)
		}
		if err := tx.Where("listing_id = ?", id).Delete(&model.ListingAmenityModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete amenity links: %w", err)
		}
		res := tx.Delete(&model.ListingModel{ID: id})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return entity.ErrNotFound
		}
		return nil
	})
}

func (r *listingRepository) ReplaceAmenities(ctx context.Context, listingID string, amenityIDs []string) error {
	ids := dedupe(amenityIDs)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(ids) > 0 {
			var known int64
			if err := tx.Model(&model.AmenityModel{}).Where("id IN ?", ids).Count(&known).Error; err != nil {
				return err
			}
			if known != int64(len(ids)) {
				return fmt.Errorf("%w: unknown amenity id", entity.ErrInvalidInput)
			}
		}

		if err := tx.Where("listing_id = ?", listingID).Delete(&model.ListingAmenityModel{}).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		links := make([]model.ListingAmenityModel, len(ids))
		for i, amenityID := range ids {
			links[i] = model.ListingAmenityModel{ListingID: listingID, AmenityID: amenityID}
		}
		return tx.Create(&links).Error
	})
}

// AddImage appends after the listing's last image. A featured image takes the
// flag from any other image of the listing.
func (r *listingRepository) AddImage(ctx context.Context, image *entity.ListingImage) error {
	row := ToImageModel(image)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner model.ListingModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", row.ListingID).
			First(&owner).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.ErrNotFound
		}
		if err != nil {
			return err
		}

		var last int
		if err := tx.Model(&model.ListingImageModel{}).
			Where("listing_id = ?", row.ListingID).
			Select("COALESCE(MAX(display_order), -1)").
			Scan(&last).Error; err != nil {
			return err
		}
		row.DisplayOrder = last + 1

		if row.IsFeatured {
			if err := clearFeaturedImage(tx, row.ListingID); err != nil {
				return err
			}
		}
		return tx.Create(row).Error
	})
	if err != nil {
		return err
	}

	*image = ToImageEntity(row)
	return nil
}

func clearFeaturedImage(tx *gorm.DB, listingID string) error {
	return tx.Model(&model.ListingImageModel{}).
		Where("listing_id = ? AND is_featured = ?", listingID, true).
		Update("is_featured", false).Error
}

func (r *listingRepository) GetImage(ctx context.Context, listingID, imageID string) (*entity.ListingImage, error) {
	var row model.ListingImageModel
	err := r.db.WithContext(ctx).Where("id = ? AND listing_id = ?", imageID, listingID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	image := ToImageEntity(&row)
	return &image, nil
}

// DeleteImage removes the row. When it was the featured image the next one in
// gallery order takes over.
func (r *listingRepository) DeleteImage(ctx context.Context, listingID, imageID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.ListingImageModel
		err := tx.Where("id = ? AND listing_id = ?", imageID, listingID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Delete(&row).Error; err != nil {
			return err
		}
		if !row.IsFeatured {
			return nil
		}

		var next model.ListingImageModel
		err = tx.Where("listing_id = ?", listingID).Order("display_order ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_featured", true).Error
	})
}

func (r *listingRepository) SetFeaturedImage(ctx context.Context, listingID, imageID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.ListingImageModel
		err := tx.Where("id = ? AND listing_id = ?", imageID, listingID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := clearFeaturedImage(tx, listingID); err != nil {
			return err
		}
		return tx.Model(&row).Update("is_featured", true).Error
	})
}

func (r *listingRepository) IncrementViews(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&model.ListingModel{ID: id}).
		UpdateColumn("views_count", clause.Expr{SQL: "views_count + ?", Vars: []interface{}{1}})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *listingRepository) CountByStatus(ctx context.Context) ([]entity.StatusCount, error) {
	var rows []struct {
		Status   string
		Featured bool
		Count    int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.ListingModel{}).
		Select("status, featured, COUNT(*) AS count").
		Group("status, featured").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]entity.StatusCount, len(rows))
	for i, row := range rows {
		counts[i] = entity.StatusCount{Status: entity.Status(row.Status), Featured: row.Featured, Count: row.Count}
	}
	return counts, nil
}

func (r *listingRepository) ListAmenities(ctx context.Context) ([]entity.Amenity, error) {
	var rows []model.AmenityModel
	if err := r.db.WithContext(ctx).Order("category ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	amenities := make([]entity.Amenity, len(rows))
	for i := range rows {
		amenities[i] = ToAmenityEntity(&rows[i])
	}
	return amenities, nil
}

func (r *listingRepository) CreateAmenity(ctx context.Context, amenity *entity.Amenity) error {
	row := &model.AmenityModel{ID: amenity.ID, Name: amenity.Name, Category: amenity.Category}
	err := r.db.WithContext(ctx).Create(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: amenity %q already exists", entity.ErrInvalidInput, amenity.Name)
	}
	if err != nil {
		return err
	}
	amenity.ID = row.ID
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
