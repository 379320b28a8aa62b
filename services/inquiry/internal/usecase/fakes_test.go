package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"estate-market/pkg/queue"
	"estate-market/services/inquiry/internal/entity"
	"estate-market/services/inquiry/internal/repo/persistent"
)

type fakeListing struct {
	sellerID  string
	title     string
	status    string
	inquiries int
}

type fakeRepo struct {
	mu        sync.Mutex
	listings  map[string]*fakeListing
	inquiries map[string]*entity.Inquiry
	seq       int
	clock     time.Time
}

var _ persistent.InquiryRepository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		listings:  make(map[string]*fakeListing),
		inquiries: make(map[string]*entity.Inquiry),
		clock:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *fakeRepo) Create(ctx context.Context, inquiry *entity.Inquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	listing, ok := r.listings[inquiry.ListingID]
	if !ok {
		return entity.ErrNotFound
	}
	if listing.status != "active" {
		return entity.ErrListingNotActive
	}

	r.seq++
	r.clock = r.clock.Add(time.Minute)
	inquiry.ID = fmt.Sprintf("inq-%d", r.seq)
	inquiry.SellerID = listing.sellerID
	inquiry.ListingTitle = listing.title
	inquiry.Status = entity.StatusNew
	inquiry.CreatedAt = r.clock
	inquiry.UpdatedAt = r.clock
	listing.inquiries++

	stored := *inquiry
	r.inquiries[inquiry.ID] = &stored
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*entity.Inquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inquiry, ok := r.inquiries[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	out := *inquiry
	return &out, nil
}

func (r *fakeRepo) list(match func(*entity.Inquiry) bool, status entity.Status, limit, offset int) ([]*entity.Inquiry, int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var all []*entity.Inquiry
	for _, inquiry := range r.inquiries {
		if !match(inquiry) || (status != "" && inquiry.Status != status) {
			continue
		}
		out := *inquiry
		all = append(all, &out)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if offset >= len(all) {
		return []*entity.Inquiry{}, total
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total
}

func (r *fakeRepo) ListByBuyer(ctx context.Context, buyerID string, status entity.Status, limit, offset int) ([]*entity.Inquiry, int64, error) {
	items, total := r.list(func(i *entity.Inquiry) bool { return i.BuyerID == buyerID }, status, limit, offset)
	return items, total, nil
}

func (r *fakeRepo) ListBySeller(ctx context.Context, sellerID string, status entity.Status, limit, offset int) ([]*entity.Inquiry, int64, error) {
	items, total := r.list(func(i *entity.Inquiry) bool { return i.SellerID == sellerID }, status, limit, offset)
	return items, total, nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, id string, from, to entity.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inquiry, ok := r.inquiries[id]
	if !ok {
		return entity.ErrNotFound
	}
	if inquiry.Status != from {
		return entity.ErrInvalidTransition
	}
	inquiry.Status = to
	return nil
}

type fakePublisher struct {
	mu    sync.Mutex
	tasks []queue.Task
	fail  bool
}

func (p *fakePublisher) PublishTask(ctx context.Context, task queue.Task) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
	return nil
}

func (p *fakePublisher) published() []queue.Task {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.Task(nil), p.tasks...)
}

type memoryInbox struct {
	mu       sync.Mutex
	items    map[string][]entity.Notification
	watchers map[string][]chan entity.Notification
	fail     bool
}

func newMemoryInbox() *memoryInbox {
	return &memoryInbox{
		items:    make(map[string][]entity.Notification),
		watchers: make(map[string][]chan entity.Notification),
	}
}

func (m *memoryInbox) Watch(ctx context.Context, userID string) (<-chan entity.Notification, func(), error) {
	if m.fail {
		return nil, nil, errors.New("redis down")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan entity.Notification, watchQueue)
	m.watchers[userID] = append(m.watchers[userID], ch)

	var once sync.Once
	stop := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			watchers := m.watchers[userID]
			for i, w := range watchers {
				if w == ch {
					m.watchers[userID] = append(watchers[:i], watchers[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
	return ch, stop, nil
}

func (m *memoryInbox) Push(ctx context.Context, n entity.Notification) error {
	if m.fail {
		return errors.New("redis down")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := append([]entity.Notification{n}, m.items[n.UserID]...)
	if len(list) > inboxSize {
		list = list[:inboxSize]
	}
	m.items[n.UserID] = list
	for _, w := range m.watchers[n.UserID] {
		w <- n
	}
	return nil
}

func (m *memoryInbox) List(ctx context.Context, userID string, limit, offset int) ([]entity.Notification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.items[userID]
	total := int64(len(list))
	if offset >= len(list) {
		return []entity.Notification{}, total, nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return append([]entity.Notification(nil), list[offset:end]...), total, nil
}
