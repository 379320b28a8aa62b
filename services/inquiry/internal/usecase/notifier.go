package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"estate-market/pkg/logger"
	"estate-market/pkg/queue"
	"estate-market/services/inquiry/internal/entity"

	"github.com/redis/go-redis/v9"
)

const (
	inboxSize  = 100
	inboxTTL   = 30 * 24 * time.Hour
	watchQueue = 16
)

func InboxKey(userID string) string {
	return fmt.Sprintf("notifications:%s", userID)
}

// Inbox stores notifications per user, newest first.
type Inbox interface {
	Push(ctx context.Context, n entity.Notification) error
	List(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error)
	// Watch streams notifications pushed after the call. The channel closes
	// once stop is called.
	Watch(ctx context.Context, userID string) (<-chan entity.Notification, func(), error)
}

type redisInbox struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisInbox(client *redis.Client, log *logger.Logger) Inbox {
	return &redisInbox{client: client, logger: log}
}

// Push stores the notification and publishes it on the same key for Watch.
func (i *redisInbox) Push(ctx context.Context, n entity.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := InboxKey(n.UserID)
	pipe := i.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, inboxSize-1)
	pipe.Expire(ctx, key, inboxTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if err := i.client.Publish(ctx, key, payload).Err(); err != nil {
		i.logger.Warn("[NOTIFIER] Stored but failed to publish notification for %s: %v", n.UserID, err)
	}
	return nil
}

func (i *redisInbox) List(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error) {
	key := InboxKey(userID)
	raw, err := i.client.LRange(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get notifications: %w", err)
	}

	notifications := make([]entity.Notification, 0, len(raw))
	for _, item := range raw {
		var n entity.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			i.logger.Warn("[NOTIFIER] Skipping malformed notification for %s: %v", userID, err)
			continue
		}
		notifications = append(notifications, n)
	}

	total, err := i.client.LLen(ctx, key).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return notifications, total, nil
}

func (i *redisInbox) Watch(ctx context.Context, userID string) (<-chan entity.Notification, func(), error) {
	pubsub := i.client.Subscribe(ctx, InboxKey(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to notifications: %w", err)
	}

	out := make(chan entity.Notification, watchQueue)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var n entity.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				i.logger.Warn("[NOTIFIER] Skipping malformed live notification for %s: %v", userID, err)
				continue
			}
			select {
			case out <- n:
			default:
				i.logger.Warn("[NOTIFIER] Live listener for %s is behind, dropping notification", userID)
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() { pubsub.Close() })
	}
	return out, stop, nil
}

var errInvalidTask = errors.New("invalid task")

type NotificationUseCase interface {
	Notifications(ctx context.Context, viewer entity.Viewer, limit, offset int) ([]entity.Notification, int64, error)
	Watch(ctx context.Context, viewer entity.Viewer) (<-chan entity.Notification, func(), error)
}

var _ NotificationUseCase = (*Notifier)(nil)

// Notifier turns queued inquiry tasks into inbox notifications.
type Notifier struct {
	inbox  Inbox
	logger *logger.Logger
	now    func() time.Time
}

func NewNotifier(inbox Inbox, log *logger.Logger) *Notifier {
	return &Notifier{inbox: inbox, logger: log, now: func() time.Time { return time.Now().UTC() }}
}

func describe(task queue.Task) (string, string) {
	listing := task.ListingName
	if listing == "" {
		listing = "your listing"
	}
	switch task.Type {
	case queue.NewInquiryRouting:
		return "New inquiry", fmt.Sprintf("Someone is interested in %s", listing)
	default:
		return "Inquiry updated", fmt.Sprintf("Your inquiry about %s is now %s", listing, task.Status)
	}
}

// HandleTask is the queue consumer callback. A malformed task is reported as
// an error; the queue requeues it once and then drops it.
func (n *Notifier) HandleTask(task queue.Task) error {
	if task.RecipientID == "" || task.InquiryID == "" {
		n.logger.Error("[NOTIFIER] Invalid task: missing recipient or inquiry, task=%+v", task)
		return errInvalidTask
	}
	if task.Type != queue.NewInquiryRouting && task.Type != queue.StatusRouting {
		n.logger.Error("[NOTIFIER] Invalid task: unknown type %q", task.Type)
		return errInvalidTask
	}

	createdAt := task.CreatedAt
	if createdAt.IsZero() {
		createdAt = n.now()
	}
	title, message := describe(task)
	notification := entity.Notification{
		UserID:       task.RecipientID,
		Type:         task.Type,
		Title:        title,
		Message:      message,
		InquiryID:    task.InquiryID,
		ListingID:    task.ListingID,
		ListingTitle: task.ListingName,
		ActorID:      task.ActorID,
		Status:       entity.Status(task.Status),
		CreatedAt:    createdAt,
	}

	if err := n.inbox.Push(context.Background(), notification); err != nil {
		n.logger.Error("[NOTIFIER] Failed to deliver %s to %s: %v", task.Type, task.RecipientID, err)
		return err
	}
	n.logger.Info("[NOTIFIER] Delivered %s for inquiry %s to %s", task.Type, task.InquiryID, task.RecipientID)
	return nil
}

// Notifications pages through the caller's inbox.
func (n *Notifier) Notifications(ctx context.Context, viewer entity.Viewer, limit, offset int) ([]entity.Notification, int64, error) {
	if viewer.UserID == "" {
		return nil, 0, entity.ErrForbidden
	}
	limit, offset = paging(limit, offset)
	return n.inbox.List(ctx, viewer.UserID, limit, offset)
}

// Watch follows the caller's inbox live.
func (n *Notifier) Watch(ctx context.Context, viewer entity.Viewer) (<-chan entity.Notification, func(), error) {
	if viewer.UserID == "" {
		return nil, nil, entity.ErrForbidden
	}
	return n.inbox.Watch(ctx, viewer.UserID)
}

// DirectPublisher delivers tasks in-process. Used when no broker is reachable.
type DirectPublisher struct {
	Notifier *Notifier
}

func (p DirectPublisher) PublishTask(ctx context.Context, task queue.Task) error {
	return p.Notifier.HandleTask(task)
}
