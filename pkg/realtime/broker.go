package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"estate-market/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "realtime:"

func Channel(table string) string {
	return channelPrefix + table
}

// Broker carries events between service instances over Redis pub/sub and
// feeds whatever arrives into the local Hub. Without a Redis client it
// publishes straight to the Hub.
type Broker struct {
	client *redis.Client
	hub    *Hub
	logger *logger.Logger
}

func NewBroker(client *redis.Client, hub *Hub, log *logger.Logger) *Broker {
	return &Broker{client: client, hub: hub, logger: log}
}

func (b *Broker) Publish(ctx context.Context, event Event) {
	if b.client == nil {
		b.hub.Publish(ctx, event)
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("[REALTIME] Failed to encode event for %s: %v", event.Table, err)
		return
	}
	if err := b.client.Publish(ctx, Channel(event.Table), payload).Err(); err != nil {
		b.logger.Error("[REALTIME] Failed to publish %s on %s: %v", event.Type, event.Table, err)
	}
}

// Run relays Redis messages to the Hub until ctx is done.
func (b *Broker) Run(ctx context.Context) error {
	if b.client == nil {
		<-ctx.Done()
		return nil
	}

	pubsub := b.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	b.logger.Info("[REALTIME] Listening on %s*", channelPrefix)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Warn("[REALTIME] Skipping malformed message on %s: %v", msg.Channel, err)
				continue
			}
			if event.Table == "" {
				event.Table = strings.TrimPrefix(msg.Channel, channelPrefix)
			}
			b.hub.Publish(ctx, event)
		}
	}
}
