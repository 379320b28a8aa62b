package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"estate-market/pkg/logger"
	"estate-market/pkg/s3"
	"estate-market/services/listing/internal/entity"
	"estate-market/services/listing/internal/repo/persistent"
	"estate-market/services/listing/internal/search"
)

type ListingUseCase interface {
	ListListings(ctx context.Context, viewer entity.Viewer, q search.Query) ([]*entity.Listing, int64, error)
	ListSellerListings(ctx context.Context, viewer entity.Viewer, q search.Query) ([]*entity.Listing, int64, error)
	GetListing(ctx context.Context, viewer entity.Viewer, id string) (*entity.Listing, bool, error)
	CreateListing(ctx context.Context, viewer entity.Viewer, input entity.ListingInput, images []entity.ImageUpload) (*entity.Listing, error)
	UpdateListing(ctx context.Context, viewer entity.Viewer, id string, patch entity.ListingPatch, images []entity.ImageUpload) (*entity.Listing, error)
	DeleteListing(ctx context.Context, viewer entity.Viewer, id string) error
	UpdateListingStatus(ctx context.Context, viewer entity.Viewer, id string, status entity.Status) (*entity.Listing, error)
	SetFeatured(ctx context.Context, viewer entity.Viewer, id string, featured bool) (*entity.Listing, error)
	SetFeaturedImage(ctx context.Context, viewer entity.Viewer, listingID, imageID string) error
	DeleteImage(ctx context.Context, viewer entity.Viewer, listingID, imageID string) error
	RecordView(ctx context.Context, viewer entity.Viewer, listingID, viewerKey string) (bool, error)
	GetStats(ctx context.Context) (*entity.Stats, error)
	ListAmenities(ctx context.Context) ([]entity.Amenity, error)
	CreateAmenity(ctx context.Context, viewer entity.Viewer, name, category string) (*entity.Amenity, error)
}

type listingUseCase struct {
	repo    persistent.ListingRepository
	storage Storage
	views   ViewTracker
	stats   StatsCache
	logger  *logger.Logger
	now     func() time.Time
}

func NewListingUseCase(
	repo persistent.ListingRepository,
	storage Storage,
	views ViewTracker,
	stats StatsCache,
	logger *logger.Logger,
) ListingUseCase {
	if views == nil {
		views = everyView{}
	}
	if stats == nil {
		stats = noStatsCache{}
	}
	return &listingUseCase{
		repo:    repo,
		storage: storage,
		views:   views,
		stats:   stats,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (uc *listingUseCase) ListListings(ctx context.Context, viewer entity.Viewer, q search.Query) ([]*entity.Listing, int64, error) {
	resolved, err := q.Resolve(viewer)
	if err != nil {
		return nil, 0, err
	}
	return uc.repo.List(ctx, resolved)
}

func (uc *listingUseCase) ListSellerListings(ctx context.Context, viewer entity.Viewer, q search.Query) ([]*entity.Listing, int64, error) {
	if viewer.UserID == "" {
		return nil, 0, entity.ErrForbidden
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", entity.ErrInvalidInput, q.Status)
	}
	return uc.repo.List(ctx, q.ForSeller(viewer.UserID))
}

// GetListing hides listings that are not public from everyone but their
// seller and admins; hidden and missing listings both report found=false.
func (uc *listingUseCase) GetListing(ctx context.Context, viewer entity.Viewer, id string) (*entity.Listing, bool, error) {
	listing, err := uc.repo.GetByID(ctx, id)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !listing.Status.Public() && !viewer.CanManage(listing) {
		return nil, false, nil
	}
	return listing, true, nil
}

func (uc *listingUseCase) load(ctx context.Context, viewer entity.Viewer, id string) (*entity.Listing, error) {
	listing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanManage(listing) {
		return nil, entity.ErrForbidden
	}
	return listing, nil
}

// CreateListing inserts the listing row first. Images and amenities are
// attached afterwards on a best-effort basis: once the row exists the call
// succeeds even if those steps fail.
func (uc *listingUseCase) CreateListing(ctx context.Context, viewer entity.Viewer, input entity.ListingInput, images []entity.ImageUpload) (*entity.Listing, error) {
	if viewer.UserID == "" || (viewer.Role != entity.RoleSeller && !viewer.IsAdmin()) {
		return nil, entity.ErrForbidden
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = entity.StatusDraft
	}
	if !viewer.IsAdmin() && status != entity.StatusDraft && status != entity.StatusPending {
		return nil, fmt.Errorf("%w: sellers may only create draft or pending listings", entity.ErrForbidden)
	}

	listing := &entity.Listing{
		SellerID:     viewer.UserID,
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		PriceCents:   input.PriceCents,
		PropertyType: input.PropertyType,
		ListingType:  input.ListingType,
		Street:       input.Street,
		City:         input.City,
		State:        input.State,
		PostalCode:   input.PostalCode,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		Bedrooms:     input.Bedrooms,
		Bathrooms:    input.Bathrooms,
		SquareFeet:   input.SquareFeet,
		LotSize:      input.LotSize,
		YearBuilt:    input.YearBuilt,
		ContactName:  input.ContactName,
		ContactPhone: input.ContactPhone,
		ContactEmail: input.ContactEmail,
		Status:       status,
		ExpiresAt:    input.ExpiresAt,
	}
	if status == entity.StatusActive {
		publishedAt := uc.now()
		listing.PublishedAt = &publishedAt
	}

	if err := uc.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}
	uc.logger.Info("[LISTING] Created listing %s for seller %s with status %s", listing.ID, listing.SellerID, listing.Status)

	uc.attachImages(ctx, listing.ID, images, true)

	if len(input.AmenityIDs) > 0 {
		if err := uc.repo.ReplaceAmenities(ctx, listing.ID, input.AmenityIDs); err != nil {
			uc.logger.Error("[LISTING] Failed to link amenities to listing %s: %v", listing.ID, err)
		}
	}

	return uc.reload(ctx, listing), nil
}

// reload fetches the listing with relations, falling back to what we have.
func (uc *listingUseCase) reload(ctx context.Context, fallback *entity.Listing) *entity.Listing {
	fresh, err := uc.repo.GetByID(ctx, fallback.ID)
	if err != nil {
		uc.logger.Warn("[LISTING] Failed to reload listing %s: %v", fallback.ID, err)
		return fallback
	}
	return fresh
}

// attachImages uploads and registers each image, logging failures. With
// featureFirst the first stored image becomes the featured one.
func (uc *listingUseCase) attachImages(ctx context.Context, listingID string, uploads []entity.ImageUpload, featureFirst bool) int {
	stored := 0
	for _, upload := range uploads {
		image, err := uc.storeImage(ctx, listingID, upload, featureFirst && stored == 0)
		if err != nil {
			uc.logger.Error("[LISTING] Failed to attach image %q to listing %s: %v", upload.Filename, listingID, err)
			continue
		}
		stored++
		uc.logger.Info("[LISTING] Attached image %s to listing %s at position %d", image.ID, listingID, image.DisplayOrder)
	}
	return stored
}

func (uc *listingUseCase) storeImage(ctx context.Context, listingID string, upload entity.ImageUpload, featured bool) (*entity.ListingImage, error) {
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: %s is not an image", entity.ErrInvalidInput, contentType)
	}
	if upload.Open == nil {
		return nil, fmt.Errorf("%w: no file content", entity.ErrInvalidInput)
	}

	src, err := upload.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	key := s3.ObjectKey("listings/"+listingID, upload.Filename)
	url, err := uc.storage.UploadFile(ctx, key, src, contentType)
	if err != nil {
		return nil, err
	}

	image := &entity.ListingImage{
		ListingID:  listingID,
		StorageKey: key,
		URL:        url,
		AltText:    upload.AltText,
		IsFeatured: featured,
	}
	if err := uc.repo.AddImage(ctx, image); err != nil {
		if delErr := uc.storage.DeleteFile(ctx, key); delErr != nil {
			uc.logger.Warn("[LISTING] Orphaned object %s after failed insert: %v", key, delErr)
		}
		return nil, fmt.Errorf("failed to register image: %w", err)
	}
	return image, nil
}

func hasFeaturedImage(l *entity.Listing) bool {
	for _, img := range l.Images {
		if img.IsFeatured {
			return true
		}
	}
	return false
}

func (uc *listingUseCase) UpdateListing(ctx context.Context, viewer entity.Viewer, id string, patch entity.ListingPatch, images []entity.ImageUpload) (*entity.Listing, error) {
	listing, err := uc.load(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, id, patch.Columns()); err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	if patch.AmenityIDs != nil {
		if err := uc.repo.ReplaceAmenities(ctx, id, *patch.AmenityIDs); err != nil {
			return nil, fmt.Errorf("failed to replace amenities: %w", err)
		}
	}

	if len(images) > 0 {
		uc.attachImages(ctx, id, images, !hasFeaturedImage(listing))
	}

	return uc.reload(ctx, listing), nil
}

// DeleteListing removes stored image objects before any row. A storage
// failure aborts with the listing intact.
func (uc *listingUseCase) DeleteListing(ctx context.Context, viewer entity.Viewer, id string) error {
	listing, err := uc.load(ctx, viewer, id)
	if err != nil {
		return err
	}

	for _, img := range listing.Images {
		if err := uc.storage.DeleteFile(ctx, img.StorageKey); err != nil {
			return fmt.Errorf("failed to delete image %s: %w", img.ID, err)
		}
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}

	uc.logger.Info("[LISTING] Deleted listing %s with %d images", id, len(listing.Images))
	return nil
}

func (uc *listingUseCase) UpdateListingStatus(ctx context.Context, viewer entity.Viewer, id string, status entity.Status) (*entity.Listing, error) {
	listing, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !listing.Status.Public() && !viewer.CanManage(listing) {
		return nil, entity.ErrNotFound
	}
	if err := entity.CheckTransition(listing, status, viewer); err != nil {
		return nil, err
	}

	var publishedAt *time.Time
	if status == entity.StatusActive {
		now := uc.now()
		publishedAt = &now
	}

	if err := uc.repo.UpdateStatus(ctx, id, status, publishedAt); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	uc.logger.Info("[LISTING] Listing %s moved %s -> %s by %s", id, listing.Status, status, viewer.UserID)

	listing.Status = status
	if publishedAt != nil {
		listing.PublishedAt = publishedAt
	}
	return uc.reload(ctx, listing), nil
}

func (uc *listingUseCase) SetFeatured(ctx context.Context, viewer entity.Viewer, id string, featured bool) (*entity.Listing, error) {
	if !viewer.IsAdmin() {
		return nil, entity.ErrForbidden
	}
	if err := uc.repo.SetFeatured(ctx, id, featured); err != nil {
		return nil, err
	}
	return uc.reload(ctx, &entity.Listing{ID: id, Featured: featured}), nil
}

func (uc *listingUseCase) SetFeaturedImage(ctx context.Context, viewer entity.Viewer, listingID, imageID string) error {
	if _, err := uc.load(ctx, viewer, listingID); err != nil {
		return err
	}
	return uc.repo.SetFeaturedImage(ctx, listingID, imageID)
}

// DeleteImage removes the stored object first, then the row.
func (uc *listingUseCase) DeleteImage(ctx context.Context, viewer entity.Viewer, listingID, imageID string) error {
	if _, err := uc.load(ctx, viewer, listingID); err != nil {
		return err
	}

	image, err := uc.repo.GetImage(ctx, listingID, imageID)
	if err != nil {
		return err
	}
	if err := uc.storage.DeleteFile(ctx, image.StorageKey); err != nil {
		return fmt.Errorf("failed to delete image object: %w", err)
	}
	return uc.repo.DeleteImage(ctx, listingID, imageID)
}

// RecordView counts a view once per viewer per window. Listings the viewer
// cannot see report not-found. If the dedupe store is unavailable the view is
// counted.
func (uc *listingUseCase) RecordView(ctx context.Context, viewer entity.Viewer, listingID, viewerKey string) (bool, error) {
	listing, err := uc.repo.GetByID(ctx, listingID)
	if err != nil {
		return false, err
	}
	if !listing.Status.Public() && !viewer.CanManage(listing) {
		return false, entity.ErrNotFound
	}

	first, err := uc.views.FirstView(ctx, listingID, viewerKey)
	if err != nil {
		uc.logger.Warn("[LISTING] View dedupe unavailable for %s: %v", listingID, err)
		first = true
	}
	if !first {
		return false, nil
	}

	if err := uc.repo.IncrementViews(ctx, listingID); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *listingUseCase) GetStats(ctx context.Context) (*entity.Stats, error) {
	if cached, ok := uc.stats.Get(ctx); ok {
		return cached, nil
	}

	rows, err := uc.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}
	stats := entity.TallyStats(rows)
	uc.stats.Set(ctx, &stats)
	return &stats, nil
}

func (uc *listingUseCase) ListAmenities(ctx context.Context) ([]entity.Amenity, error) {
	return uc.repo.ListAmenities(ctx)
}

func (uc *listingUseCase) CreateAmenity(ctx context.Context, viewer entity.Viewer, name, category string) (*entity.Amenity, error) {
	if !viewer.IsAdmin() {
		return nil, entity.ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: amenity name is required", entity.ErrInvalidInput)
	}

	amenity := &entity.Amenity{Name: name, Category: strings.TrimSpace(category)}
	if err := uc.repo.CreateAmenity(ctx, amenity); err != nil {
		return nil, err
	}
	return amenity, nil
}
