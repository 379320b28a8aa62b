package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage holds listing image objects. *s3.Client satisfies it.
type Storage interface {
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
}

// ViewTracker reports whether this is the first view of a listing by a viewer
// within the dedupe window.
type ViewTracker interface {
	FirstView(ctx context.Context, listingID, viewerKey string) (bool, error)
}

const viewDedupeWindow = 24 * time.Hour

type redisViewTracker struct {
	client *redis.Client
}

func NewRedisViewTracker(client *redis.Client) ViewTracker {
	if client == nil {
		return everyView{}
	}
	return &redisViewTracker{client: client}
}

func (t *redisViewTracker) FirstView(ctx context.Context, listingID, viewerKey string) (bool, error) {
	key := fmt.Sprintf("listing_viewed:%s:%s", listingID, viewerKey)
	return t.client.SetNX(ctx, key, "1", viewDedupeWindow).Result()
}

type everyView struct{}

func (everyView) FirstView(context.Context, string, string) (bool, error) {
	return true, nil
}
