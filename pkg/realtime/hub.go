package realtime

import (
	"context"
	"sync"

	"estate-market/pkg/logger"
)

const defaultBufferSize = 64

type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Hub fans events out to in-process subscribers. Each subscriber runs its
// callback on its own goroutine.
type Hub struct {
	mu         sync.RWMutex
	subs       map[uint64]*Subscription
	nextID     uint64
	bufferSize int
	logger     *logger.Logger
}

func NewHub(bufferSize int, log *logger.Logger) *Hub {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return &Hub{
		subs:       make(map[uint64]*Subscription),
		bufferSize: bufferSize,
		logger:     log,
	}
}

type Subscription struct {
	id     uint64
	hub    *Hub
	tables map[string]struct{}
	events chan Event
	done   chan struct{}
	once   sync.Once
}

// Subscribe registers onChange for the given tables; no tables means all of them.
func (h *Hub) Subscribe(tables []string, onChange func(Event)) *Subscription {
	sub := &Subscription{
		hub:    h,
		tables: make(map[string]struct{}, len(tables)),
		events: make(chan Event, h.bufferSize),
		done:   make(chan struct{}),
	}
	for _, t := range tables {
		sub.tables[t] = struct{}{}
	}

	h.mu.Lock()
	h.nextID++
	sub.id = h.nextID
	h.subs[sub.id] = sub
	h.mu.Unlock()

	go sub.run(onChange)
	return sub
}

func (s *Subscription) run(onChange func(Event)) {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			onChange(ev)
		}
	}
}

func (s *Subscription) wants(table string) bool {
	if len(s.tables) == 0 {
		return true
	}
	_, ok := s.tables[table]
	return ok
}

// Unsubscribe is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
		close(s.done)
	})
}

// Publish delivers to every matching subscriber without blocking. A subscriber
// whose buffer is full already has a refetch pending, so the event is dropped.
func (h *Hub) Publish(_ context.Context, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if !sub.wants(event.Table) {
			continue
		}
		select {
		case sub.events <- event:
		default:
			if h.logger != nil {
				h.logger.Warn("[REALTIME] Subscriber %d buffer full, dropped %s on %s", sub.id, event.Type, event.Table)
			}
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
