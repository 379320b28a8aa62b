package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"estate-market/pkg/logger"
	"estate-market/pkg/queue"
	"estate-market/services/inquiry/internal/entity"
	"estate-market/services/inquiry/internal/repo/persistent"
)

const (
	defaultLimit   = 20
	maxLimit       = 100
	publishTimeout = 5 * time.Second
)

// TaskPublisher hands notification work to the queue. *queue.Client satisfies it.
type TaskPublisher interface {
	PublishTask(ctx context.Context, task queue.Task) error
}

type InquiryUseCase interface {
	CreateInquiry(ctx context.Context, viewer entity.Viewer, listingID string, input entity.InquiryInput) (*entity.Inquiry, error)
	ListSent(ctx context.Context, viewer entity.Viewer, status entity.Status, limit, offset int) ([]*entity.Inquiry, int64, error)
	ListReceived(ctx context.Context, viewer entity.Viewer, status entity.Status, limit, offset int) ([]*entity.Inquiry, int64, error)
	GetInquiry(ctx context.Context, viewer entity.Viewer, id string) (*entity.Inquiry, error)
	UpdateStatus(ctx context.Context, viewer entity.Viewer, id string, status entity.Status) (*entity.Inquiry, error)
}

type inquiryUseCase struct {
	repo      persistent.InquiryRepository
	publisher TaskPublisher
	logger    *logger.Logger
	// async is false in tests so published tasks can be asserted right away
	async bool
}

func NewInquiryUseCase(repo persistent.InquiryRepository, publisher TaskPublisher, logger *logger.Logger) InquiryUseCase {
	return &inquiryUseCase{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		async:     true,
	}
}

func paging(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// publish never fails the caller; a lost notification is logged.
func (uc *inquiryUseCase) publish(task queue.Task) {
	if uc.publisher == nil {
		return
	}
	send := func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := uc.publisher.PublishTask(ctx, task); err != nil {
			uc.logger.Error("[INQUIRY] Failed to queue %s for inquiry %s: %v", task.Type, task.InquiryID, err)
		}
	}
	if uc.async {
		go send()
		return
	}
	send()
}

func (uc *inquiryUseCase) CreateInquiry(ctx context.Context, viewer entity.Viewer, listingID string, input entity.InquiryInput) (*entity.Inquiry, error) {
	if viewer.UserID == "" {
		return nil, entity.ErrForbidden
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	inquiry := &entity.Inquiry{
		ListingID:    listingID,
		BuyerID:      viewer.UserID,
		Message:      strings.TrimSpace(input.Message),
		ContactPhone: strings.TrimSpace(input.ContactPhone),
		ContactEmail: strings.TrimSpace(input.ContactEmail),
	}
	if err := uc.repo.Create(ctx, inquiry); err != nil {
		if errors.Is(err, entity.ErrNotFound) || errors.Is(err, entity.ErrListingNotActive) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create inquiry: %w", err)
	}
	if inquiry.SellerID == viewer.UserID {
		uc.logger.Warn("[INQUIRY] Seller %s sent inquiry %s on own listing %s", viewer.UserID, inquiry.ID, listingID)
	}

	uc.logger.Info("[INQUIRY] Created inquiry %s on listing %s from buyer %s to seller %s", inquiry.ID, listingID, inquiry.BuyerID, inquiry.SellerID)

	uc.publish(queue.Task{
		Type:        queue.NewInquiryRouting,
		Priority:    5,
		InquiryID:   inquiry.ID,
		ListingID:   inquiry.ListingID,
		ListingName: inquiry.ListingTitle,
		RecipientID: inquiry.SellerID,
		ActorID:     inquiry.BuyerID,
		CreatedAt:   inquiry.CreatedAt,
	})

	return inquiry, nil
}

func (uc *inquiryUseCase) ListSent(ctx context.Context, viewer entity.Viewer, status entity.Status, limit, offset int) ([]*entity.Inquiry, int64, error) {
	if viewer.UserID == "" {
		return nil, 0, entity.ErrForbidden
	}
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", entity.ErrInvalidInput, status)
	}
	limit, offset = paging(limit, offset)
	return uc.repo.ListByBuyer(ctx, viewer.UserID, status, limit, offset)
}

func (uc *inquiryUseCase) ListReceived(ctx context.Context, viewer entity.Viewer, status entity.Status, limit, offset int) ([]*entity.Inquiry, int64, error) {
	if viewer.UserID == "" {
		return nil, 0, entity.ErrForbidden
	}
	if status != "" && !status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", entity.ErrInvalidInput, status)
	}
	limit, offset = paging(limit, offset)
	return uc.repo.ListBySeller(ctx, viewer.UserID, status, limit, offset)
}

func (uc *inquiryUseCase) GetInquiry(ctx context.Context, viewer entity.Viewer, id string) (*entity.Inquiry, error) {
	inquiry, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() && !viewer.IsParty(inquiry) {
		// outsiders cannot tell a foreign inquiry from a missing one
		return nil, entity.ErrNotFound
	}
	return inquiry, nil
}

func (uc *inquiryUseCase) UpdateStatus(ctx context.Context, viewer entity.Viewer, id string, status entity.Status) (*entity.Inquiry, error) {
	inquiry, err := uc.GetInquiry(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := entity.CheckStatusChange(inquiry, status, viewer); err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateStatus(ctx, id, inquiry.Status, status); err != nil {
		return nil, err
	}
	uc.logger.Info("[INQUIRY] Inquiry %s moved %s -> %s by %s", id, inquiry.Status, status, viewer.UserID)
	inquiry.Status = status

	recipient := inquiry.BuyerID
	if viewer.UserID == inquiry.BuyerID {
		recipient = inquiry.SellerID
	}
	uc.publish(queue.Task{
		Type:        queue.StatusRouting,
		Priority:    1,
		InquiryID:   inquiry.ID,
		ListingID:   inquiry.ListingID,
		ListingName: inquiry.ListingTitle,
		RecipientID: recipient,
		ActorID:     viewer.UserID,
		Status:      string(status),
	})

	return inquiry, nil
}
