package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"estate-market/services/auth/internal/entity"
	"estate-market/services/auth/internal/repo/persistent"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	seq   int
	clock time.Time
}

var _ persistent.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[string]*entity.User),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return entity.ErrEmailTaken
		}
	}
	r.seq++
	r.clock = r.clock.Add(time.Hour)
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = r.clock
	user.UpdatedAt = r.clock
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *fakeUserRepo) update(id string, apply func(*entity.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return entity.ErrNotFound
	}
	apply(u)
	return nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id string, patch entity.ProfilePatch) error {
	return r.update(id, func(u *entity.User) {
		if patch.Name != nil {
			u.Name = *patch.Name
		}
		if patch.Phone != nil {
			u.Phone = *patch.Phone
		}
	})
}

func (r *fakeUserRepo) UpdateStatus(ctx context.Context, id string, status entity.AccountStatus) error {
	return r.update(id, func(u *entity.User) { u.Status = status })
}

func (r *fakeUserRepo) SetVerified(ctx context.Context, id string, verified bool) error {
	return r.update(id, func(u *entity.User) { u.Verified = verified })
}

func (r *fakeUserRepo) List(ctx context.Context, filter entity.UserFilter, limit, offset int) ([]*entity.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*entity.User
	for _, u := range r.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.Email+" "+u.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out := *u
		all = append(all, &out)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return []*entity.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}
