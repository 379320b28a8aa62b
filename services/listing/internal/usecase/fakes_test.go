package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"estate-market/services/listing/internal/entity"
	"estate-market/services/listing/internal/repo/persistent"
	"estate-market/services/listing/internal/search"
)

// journal records storage and row operations in call order.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(format string, args ...interface{}) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, fmt.Sprintf(format, args...))
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type fakeRepo struct {
	mu         sync.Mutex
	log        *journal
	listings   map[string]*entity.Listing
	amenities  map[string]entity.Amenity
	seq        int
	clock      time.Time
	failImages bool
	failLinks  bool
}

var _ persistent.ListingRepository = (*fakeRepo)(nil)

func newFakeRepo(log *journal) *fakeRepo {
	return &fakeRepo{
		log:       log,
		listings:  make(map[string]*entity.Listing),
		amenities: make(map[string]entity.Amenity),
		clock:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func clone(l *entity.Listing) *entity.Listing {
	c := *l
	c.Images = append([]entity.ListingImage{}, l.Images...)
	c.Amenities = append([]entity.Amenity{}, l.Amenities...)
	return &c
}

func (r *fakeRepo) List(ctx context.Context, q search.Query) ([]*entity.Listing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*entity.Listing
	for _, l := range r.listings {
		if q.Matches(l) {
			matched = append(matched, clone(l))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	matched = search.Sort(matched, q.Sort)

	total := int64(len(matched))
	if q.Offset >= len(matched) {
		return []*entity.Listing{}, total, nil
	}
	end := q.Offset + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[q.Offset:end], total, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return clone(l), nil
}

func (r *fakeRepo) Create(ctx context.Context, listing *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clock = r.clock.Add(time.Minute)
	listing.ID = r.nextID("listing")
	listing.CreatedAt = r.clock
	listing.UpdatedAt = r.clock
	stored := clone(listing)
	stored.Images = []entity.ListingImage{}
	stored.Amenities = []entity.Amenity{}
	r.listings[listing.ID] = stored
	r.log.add("insert listing %s", listing.ID)
	return nil
}

func (r *fakeRepo) Update(ctx context.Context, id string, columns map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[id]
	if !ok {
		return entity.ErrNotFound
	}
	for col, v := range columns {
		switch col {
		case "title":
			l.Title = v.(string)
		case "description":
			l.Description = v.(string)
		case "price_cents":
			l.PriceCents = v.(int64)
		case "city":
			l.City = v.(string)
		case "bedrooms":
			l.Bedrooms = v.(int)
		case "status":
			l.Status = entity.Status(v.(string))
		case "published_at":
			t := v.(time.Time)
			l.PublishedAt = &t
		case "featured":
			l.Featured = v.(bool)
		default:
			return fmt.Errorf("fake repo cannot update %s", col)
		}
	}
	return nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, id string, status entity.Status, publishedAt *time.Time) error {
	columns := map[string]interface{}{"status": string(status)}
	if publishedAt != nil {
		columns["published_at"] = *publishedAt
	}
	return r.Update(ctx, id, columns)
}

func (r *fakeRepo) SetFeatured(ctx context.Context, id string, featured bool) error {
	return r.Update(ctx, id, map[string]interface{}{"featured": featured})
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[id]; !ok {
		return entity.ErrNotFound
	}
	delete(r.listings, id)
	r.log.add("delete rows %s", id)
	return nil
}

func (r *fakeRepo) ReplaceAmenities(ctx context.Context, listingID string, amenityIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failLinks {
		return errors.New("link insert failed")
	}
	l, ok := r.listings[listingID]
	if !ok {
		return entity.ErrNotFound
	}
	linked := []entity.Amenity{}
	for _, id := range amenityIDs {
		a, ok := r.amenities[id]
		if !ok {
			return entity.ErrInvalidInput
		}
		linked = append(linked, a)
	}
	l.Amenities = linked
	return nil
}

func (r *fakeRepo) AddImage(ctx context.Context, image *entity.ListingImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failImages {
		return errors.New("image insert failed")
	}
	l, ok := r.listings[image.ListingID]
	if !ok {
		return entity.ErrNotFound
	}
	image.ID = r.nextID("img")
	image.DisplayOrder = len(l.Images)
	if n := len(l.Images); n > 0 {
		image.DisplayOrder = l.Images[n-1].DisplayOrder + 1
	}
	if image.IsFeatured {
		for i := range l.Images {
			l.Images[i].IsFeatured = false
		}
	}
	l.Images = append(l.Images, *image)
	return nil
}

func (r *fakeRepo) GetImage(ctx context.Context, listingID, imageID string) (*entity.ListingImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[listingID]
	if !ok {
		return nil, entity.ErrNotFound
	}
	for _, img := range l.Images {
		if img.ID == imageID {
			found := img
			return &found, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *fakeRepo) DeleteImage(ctx context.Context, listingID, imageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.listings[listingID]
	for i, img := range l.Images {
		if img.ID == imageID {
			l.Images = append(l.Images[:i], l.Images[i+1:]...)
			r.log.add("delete image row %s", imageID)
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r *fakeRepo) SetFeaturedImage(ctx context.Context, listingID, imageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l := r.listings[listingID]
	found := false
	for i := range l.Images {
		l.Images[i].IsFeatured = l.Images[i].ID == imageID
		found = found || l.Images[i].IsFeatured
	}
	if !found {
		return entity.ErrNotFound
	}
	return nil
}

func (r *fakeRepo) IncrementViews(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[id]
	if !ok {
		return entity.ErrNotFound
	}
	l.ViewsCount++
	return nil
}

func (r *fakeRepo) CountByStatus(ctx context.Context) ([]entity.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	type key struct {
		status   entity.Status
		featured bool
	}
	counts := make(map[key]int64)
	for _, l := range r.listings {
		counts[key{l.Status, l.Featured}]++
	}
	var rows []entity.StatusCount
	for k, n := range counts {
		rows = append(rows, entity.StatusCount{Status: k.status, Featured: k.featured, Count: n})
	}
	return rows, nil
}

func (r *fakeRepo) ListAmenities(ctx context.Context) ([]entity.Amenity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []entity.Amenity
	for _, a := range r.amenities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRepo) CreateAmenity(ctx context.Context, amenity *entity.Amenity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.amenities {
		if strings.EqualFold(a.Name, amenity.Name) {
			return entity.ErrInvalidInput
		}
	}
	amenity.ID = r.nextID("amenity")
	r.amenities[amenity.ID] = *amenity
	return nil
}

type fakeStorage struct {
	mu         sync.Mutex
	log        *journal
	objects    map[string]string
	failUpload bool
	failDelete bool
}

func newFakeStorage(log *journal) *fakeStorage {
	return &fakeStorage{log: log, objects: make(map[string]string)}
}

func (s *fakeStorage) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failUpload {
		return "", errors.New("bucket unavailable")
	}
	body, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.objects[key] = string(body)
	return "https://cdn.test/" + key, nil
}

func (s *fakeStorage) DeleteFile(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failDelete {
		return errors.New("bucket unavailable")
	}
	delete(s.objects, key)
	s.log.add("delete object %s", key)
	return nil
}

func (s *fakeStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type memoryViews struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (v *memoryViews) FirstView(ctx context.Context, listingID, viewerKey string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.seen == nil {
		v.seen = make(map[string]bool)
	}
	key := listingID + ":" + viewerKey
	if v.seen[key] {
		return false, nil
	}
	v.seen[key] = true
	return true, nil
}

type memoryStatsCache struct {
	mu          sync.Mutex
	stats       *entity.Stats
	invalidated int
}

func (c *memoryStatsCache) Get(context.Context) (*entity.Stats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats, c.stats != nil
}

func (c *memoryStatsCache) Set(_ context.Context, stats *entity.Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = stats
}

func (c *memoryStatsCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = nil
	c.invalidated++
}

func upload(name, body string) entity.ImageUpload {
	return entity.ImageUpload{
		Filename:    name,
		ContentType: "image/jpeg",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}
