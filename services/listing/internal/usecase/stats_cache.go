package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"estate-market/pkg/logger"
	"estate-market/pkg/realtime"
	"estate-market/services/listing/internal/entity"

	"github.com/redis/go-redis/v9"
)

const statsCacheKey = "listing_stats"

type StatsCache interface {
	Get(ctx context.Context) (*entity.Stats, bool)
	Set(ctx context.Context, stats *entity.Stats)
	Invalidate(ctx context.Context)
}

type redisStatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

func NewRedisStatsCache(client *redis.Client, ttl time.Duration, log *logger.Logger) StatsCache {
	if client == nil {
		return noStatsCache{}
	}
	return &redisStatsCache{client: client, ttl: ttl, logger: log}
}

func (c *redisStatsCache) Get(ctx context.Context) (*entity.Stats, bool) {
	raw, err := c.client.Get(ctx, statsCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("[LISTING] Failed to read cached stats: %v", err)
		return nil, false
	}

	var stats entity.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.logger.Warn("[LISTING] Dropping malformed cached stats: %v", err)
		return nil, false
	}
	return &stats, true
}

func (c *redisStatsCache) Set(ctx context.Context, stats *entity.Stats) {
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statsCacheKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("[LISTING] Failed to cache stats: %v", err)
	}
}

func (c *redisStatsCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, statsCacheKey).Err(); err != nil {
		c.logger.Warn("[LISTING] Failed to invalidate stats: %v", err)
	}
}

type noStatsCache struct{}

func (noStatsCache) Get(context.Context) (*entity.Stats, bool) { return nil, false }
func (noStatsCache) Set(context.Context, *entity.Stats)        {}
func (noStatsCache) Invalidate(context.Context)                {}

// InvalidateOnChange drops cached stats once per burst of listing writes.
// The returned func stops watching.
func InvalidateOnChange(hub *realtime.Hub, cache StatsCache, window time.Duration) func() {
	debouncer := realtime.Debounce(window, func() {
		cache.Invalidate(context.Background())
	})
	sub := hub.Subscribe([]string{realtime.TableListings}, func(realtime.Event) {
		debouncer.Trigger()
	})
	return func() {
		sub.Unsubscribe()
		debouncer.Stop()
	}
}
