package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"estate-market/pkg/logger"
	"estate-market/pkg/realtime"
	"estate-market/services/listing/internal/entity"
	"estate-market/services/listing/internal/search"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	seller    = entity.Viewer{UserID: "seller-1", Role: entity.RoleSeller}
	other     = entity.Viewer{UserID: "seller-2", Role: entity.RoleSeller}
	admin     = entity.Viewer{UserID: "admin-1", Role: entity.RoleAdmin}
	anonymous = entity.Viewer{}
)

type fixture struct {
	uc      *listingUseCase
	repo    *fakeRepo
	storage *fakeStorage
	stats   *memoryStatsCache
	log     *journal
}

func newFixture() *fixture {
	j := &journal{}
	repo := newFakeRepo(j)
	storage := newFakeStorage(j)
	stats := &memoryStatsCache{}
	uc := NewListingUseCase(repo, storage, &memoryViews{}, stats, logger.NewWithWriter(io.Discard, io.Discard)).(*listingUseCase)
	uc.now = func() time.Time { return time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC) }
	return &fixture{uc: uc, repo: repo, storage: storage, stats: stats, log: j}
}

func saleInput() entity.ListingInput {
	return entity.ListingInput{
		Title:        "Brick terrace",
		Description:  "Close to the park",
		PriceCents:   32500000,
		PropertyType: entity.PropertyHouse,
		ListingType:  entity.ListingSale,
		City:         "Leeds",
		State:        "West Yorkshire",
		PostalCode:   "LS6",
		Bedrooms:     3,
		Bathrooms:    1.5,
	}
}

func (f *fixture) create(t *testing.T, viewer entity.Viewer, in entity.ListingInput, images ...entity.ImageUpload) *entity.Listing {
	t.Helper()
	listing, err := f.uc.CreateListing(context.Background(), viewer, in, images)
	require.NoError(t, err)
	return listing
}

func (f *fixture) activate(t *testing.T, id string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.uc.UpdateListingStatus(ctx, seller, id, entity.StatusPending)
	require.NoError(t, err)
	_, err = f.uc.UpdateListingStatus(ctx, admin, id, entity.StatusActive)
	require.NoError(t, err)
}

func TestCreateListing_DefaultsToDraft(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created := f.create(t, seller, saleInput())
	assert.Equal(t, entity.StatusDraft, created.Status)
	assert.Nil(t, created.PublishedAt)

	got, found, err := f.uc.GetListing(ctx, seller, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Brick terrace", got.Title)
	assert.Equal(t, int64(32500000), got.PriceCents)
	assert.Equal(t, entity.PropertyHouse, got.PropertyType)
	assert.Equal(t, 3, got.Bedrooms)
	assert.Equal(t, 1.5, got.Bathrooms)
	assert.Equal(t, "seller-1", got.SellerID)
}

func TestCreateListing_ActiveSetsPublishedAt(t *testing.T) {
	f := newFixture()

	in := saleInput()
	in.Status = entity.StatusActive
	created := f.create(t, admin, in)

	require.NotNil(t, created.PublishedAt)
	assert.Equal(t, f.uc.now(), *created.PublishedAt)
}

func TestCreateListing_SellerCannotSelfPublish(t *testing.T) {
	f := newFixture()

	in := saleInput()
	in.Status = entity.StatusActive
	_, err := f.uc.CreateListing(context.Background(), seller, in, nil)
	assert.ErrorIs(t, err, entity.ErrForbidden)

	_, err = f.uc.CreateListing(context.Background(), entity.Viewer{UserID: "b", Role: entity.RoleBuyer}, saleInput(), nil)
	assert.ErrorIs(t, err, entity.ErrForbidden)
}

func TestCreateListing_InvalidInput(t *testing.T) {
	f := newFixture()

	in := saleInput()
	in.PriceCents = 0
	_, err := f.uc.CreateListing(context.Background(), seller, in, nil)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
	assert.Empty(t, f.repo.listings)
}

func TestCreateListing_FirstImageFeatured(t *testing.T) {
	f := newFixture()

	created := f.create(t, seller, saleInput(), upload("front.JPG", "a"), upload("kitchen.png", "b"))

	require.Len(t, created.Images, 2)
	assert.True(t, created.Images[0].IsFeatured)
	assert.False(t, created.Images[1].IsFeatured)
	assert.Equal(t, 0, created.Images[0].DisplayOrder)
	assert.Equal(t, 1, created.Images[1].DisplayOrder)
	assert.Contains(t, created.Images[0].StorageKey, "listings/"+created.ID+"/")
	assert.Contains(t, created.Images[0].StorageKey, ".jpg")
	assert.Equal(t, 2, f.storage.count())
}

func TestCreateListing_ImageUploadFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	f.storage.failUpload = true

	created, err := f.uc.CreateListing(context.Background(), seller, saleInput(), []entity.ImageUpload{upload("a.jpg", "a")})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Empty(t, created.Images)
	_, found, _ := f.uc.GetListing(context.Background(), seller, created.ID)
	assert.True(t, found)
}

func TestCreateListing_ImageRowFailureCleansUpObject(t *testing.T) {
	f := newFixture()
	f.repo.failImages = true

	created, err := f.uc.CreateListing(context.Background(), seller, saleInput(), []entity.ImageUpload{upload("a.jpg", "a")})

	require.NoError(t, err)
	assert.Empty(t, created.Images)
	assert.Zero(t, f.storage.count())
}

func TestCreateListing_AmenityFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	pool, err := f.uc.CreateAmenity(context.Background(), admin, "Pool", "outdoor")
	require.NoError(t, err)
	f.repo.failLinks = true

	in := saleInput()
	in.AmenityIDs = []string{pool.ID}
	created, err := f.uc.CreateListing(context.Background(), seller, in, nil)

	require.NoError(t, err)
	assert.Empty(t, created.Amenities)
}

func TestCreateListing_NonImageSkipped(t *testing.T) {
	f := newFixture()
	doc := upload("notes.pdf", "x")
	doc.ContentType = "application/pdf"

	created := f.create(t, seller, saleInput(), doc, upload("a.jpg", "a"))

	require.Len(t, created.Images, 1)
	assert.True(t, created.Images[0].IsFeatured)
}

func TestUpdateListing_OnlyProvidedFields(t *testing.T) {
	f := newFixture()
	created := f.create(t, seller, saleInput(), upload("a.jpg", "a"))

	title := "Brick terrace, renovated"
	updated, err := f.uc.UpdateListing(context.Background(), seller, created.ID, entity.ListingPatch{Title: &title}, []entity.ImageUpload{upload("b.jpg", "b")})
	require.NoError(t, err)

	assert.Equal(t, title, updated.Title)
	assert.Equal(t, created.PriceCents, updated.PriceCents)
	assert.Equal(t, created.City, updated.City)
	require.Len(t, updated.Images, 2)
	assert.True(t, updated.Images[0].IsFeatured)
	assert.False(t, updated.Images[1].IsFeatured)
	assert.Equal(t, 1, updated.Images[1].DisplayOrder)
}

func TestUpdateListing_ReplacesAmenities(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	pool, _ := f.uc.CreateAmenity(ctx, admin, "Pool", "outdoor")
	gym, _ := f.uc.CreateAmenity(ctx, admin, "Gym", "indoor")

	in := saleInput()
	in.AmenityIDs = []string{pool.ID}
	created := f.create(t, seller, in)
	require.Len(t, created.Amenities, 1)

	ids := []string{gym.ID}
	updated, err := f.uc.UpdateListing(ctx, seller, created.ID, entity.ListingPatch{AmenityIDs: &ids}, nil)
	require.NoError(t, err)
	assert.Equal(t, []entity.Amenity{*gym}, updated.Amenities)

	empty := []string{}
	updated, err = f.uc.UpdateListing(ctx, seller, created.ID, entity.ListingPatch{AmenityIDs: &empty}, nil)
	require.NoError(t, err)
	assert.Empty(t, updated.Amenities)
}

func TestUpdateListing_Authorization(t *testing.T) {
	f := newFixture()
	created := f.create(t, seller, saleInput())
	title := "Hijacked"

	_, err := f.uc.UpdateListing(context.Background(), other, created.ID, entity.ListingPatch{Title: &title}, nil)
	assert.ErrorIs(t, err, entity.ErrForbidden)

	_, err = f.uc.UpdateListing(context.Background(), admin, created.ID, entity.ListingPatch{Title: &title}, nil)
	assert.NoError(t, err)

	_, err = f.uc.UpdateListing(context.Background(), seller, "missing", entity.ListingPatch{Title: &title}, nil)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestDeleteListing_RemovesObjectsBeforeRows(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.create(t, seller, saleInput(), upload("a.jpg", "a"), upload("b.jpg", "b"))

	require.NoError(t, f.uc.DeleteListing(ctx, seller, created.ID))

	entries := f.log.all()
	require.Len(t, entries, 4)
	assert.Equal(t, "insert listing "+created.ID, entries[0])
	assert.Contains(t, entries[1], "delete object listings/"+created.ID)
	assert.Contains(t, entries[2], "delete object listings/"+created.ID)
	assert.Equal(t, "delete rows "+created.ID, entries[3])
	assert.Zero(t, f.storage.count())

	got, found, err := f.uc.GetListing(ctx, seller, created.ID)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestDeleteListing_StorageFailureAborts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.create(t, seller, saleInput(), upload("a.jpg", "a"))
	f.storage.failDelete = true

	assert.Error(t, f.uc.DeleteListing(ctx, seller, created.ID))

	got, found, err := f.uc.GetListing(ctx, seller, created.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, got.Images, 1)
}

func TestDeleteListing_Authorization(t *testing.T) {
	f := newFixture()
	created := f.create(t, seller, saleInput())

	assert.ErrorIs(t, f.uc.DeleteListing(context.Background(), other, created.ID), entity.ErrForbidden)
	assert.ErrorIs(t, f.uc.DeleteListing(context.Background(), seller, "missing"), entity.ErrNotFound)
	assert.NoError(t, f.uc.DeleteListing(context.Background(), admin, created.ID))
}

func TestUpdateListingStatus_PublishedAt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.create(t, seller, saleInput())

	pending, err := f.uc.UpdateListingStatus(ctx, seller, created.ID, entity.StatusPending)
	require.NoError(t, err)
	assert.Nil(t, pending.PublishedAt)

	active, err := f.uc.UpdateListingStatus(ctx, admin, created.ID, entity.StatusActive)
	require.NoError(t, err)
	require.NotNil(t, active.PublishedAt)
	publishedAt := *active.PublishedAt

	f.uc.now = func() time.Time { return publishedAt.Add(48 * time.Hour) }
	suspended, err := f.uc.UpdateListingStatus(ctx, admin, created.ID, entity.StatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSuspended, suspended.Status)
	require.NotNil(t, suspended.PublishedAt)
	assert.Equal(t, publishedAt, *suspended.PublishedAt)
}

func TestUpdateListingStatus_RejectAndResubmit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.create(t, seller, saleInput())

	_, err := f.uc.UpdateListingStatus(ctx, seller, created.ID, entity.StatusPending)
	require.NoError(t, err)
	_, err = f.uc.UpdateListingStatus(ctx, admin, created.ID, entity.StatusRejected)
	require.NoError(t, err)

	_, err = f.uc.UpdateListingStatus(ctx, seller, created.ID, entity.StatusActive)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	resubmitted, err := f.uc.UpdateListingStatus(ctx, seller, created.ID, entity.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, resubmitted.Status)
}

func TestListListings_StatusDefaults(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	live := f.create(t, seller, saleInput())
	f.activate(t, live.ID)
	f.create(t, seller, saleInput())
	pending := f.create(t, seller, saleInput())
	_, err := f.uc.UpdateListingStatus(ctx, seller, pending.ID, entity.StatusPending)
	require.NoError(t, err)

	public, total, err := f.uc.ListListings(ctx, anonymous, search.Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, public, 1)
	assert.Equal(t, live.ID, public[0].ID)
	for _, l := range public {
		assert.Equal(t, entity.StatusActive, l.Status)
	}

	everything, total, err := f.uc.ListListings(ctx, admin, search.Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, everything, 3)

	_, _, err = f.uc.ListListings(ctx, anonymous, search.Query{Status: entity.StatusDraft})
	assert.ErrorIs(t, err, entity.ErrForbidden)
}

func TestListListings_NewestFirstAndPaging(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		l := f.create(t, seller, saleInput())
		ids = append(ids, l.ID)
	}

	page, total, err := f.uc.ListListings(ctx, admin, search.Query{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)
}

func TestListSellerListings_AllOwnStatuses(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.create(t, seller, saleInput())
	live := f.create(t, seller, saleInput())
	f.activate(t, live.ID)
	f.create(t, other, saleInput())

	mine, total, err := f.uc.ListSellerListings(ctx, seller, search.Query{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, l := range mine {
		assert.Equal(t, seller.UserID, l.SellerID)
	}

	_, _, err = f.uc.ListSellerListings(ctx, anonymous, search.Query{})
	assert.ErrorIs(t, err, entity.ErrForbidden)
}

func TestGetListing_HiddenFromStrangers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	draft := f.create(t, seller, saleInput())

	got, found, err := f.uc.GetListing(ctx, anonymous, draft.ID)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)

	_, found, _ = f.uc.GetListing(ctx, other, draft.ID)
	assert.False(t, found)
	_, found, _ = f.uc.GetListing(ctx, admin, draft.ID)
	assert.True(t, found)

	_, found, err = f.uc.GetListing(ctx, anonymous, "missing")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestRecordView_DedupedPerViewer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.create(t, seller, saleInput())
	f.activate(t, created.ID)

	counted, err := f.uc.RecordView(ctx, anonymous, created.ID, "viewer-a")
	require.NoError(t, err)
	assert.True(t, counted)
	counted, err = f.uc.RecordView(ctx, anonymous, created.ID, "viewer-a")
	require.NoError(t, err)
	assert.False(t, counted)
	counted, err = f.uc.RecordView(ctx, anonymous, created.ID, "viewer-b")
	require.NoError(t, err)
	assert.True(t, counted)

	got, _, _ := f.uc.GetListing(ctx, seller, created.ID)
	assert.Equal(t, int64(2), got.ViewsCount)

	_, err = f.uc.RecordView(ctx, anonymous, "missing", "viewer-a")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestRecordView_HiddenListing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	draft := f.create(t, seller, saleInput())

	counted, err := f.uc.RecordView(ctx, anonymous, draft.ID, "anon:192.0.2.1")
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.False(t, counted)
	_, err = f.uc.RecordView(ctx, other, draft.ID, other.UserID)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	counted, err = f.uc.RecordView(ctx, seller, draft.ID, seller.UserID)
	require.NoError(t, err)
	assert.True(t, counted)

	got, _, _ := f.uc.GetListing(ctx, seller, draft.ID)
	assert.Equal(t, int64(1), got.ViewsCount)
}

func TestUpdateListingStatus_HiddenFromStrangers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	draft := f.create(t, seller, saleInput())

	_, err := f.uc.UpdateListingStatus(ctx, other, draft.ID, entity.StatusPending)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	_, err = f.uc.UpdateListingStatus(ctx, anonymous, draft.ID, entity.StatusPending)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	f.activate(t, draft.ID)
	_, err = f.uc.UpdateListingStatus(ctx, other, draft.ID, entity.StatusSold)
	assert.ErrorIs(t, err, entity.ErrForbidden)
}

func TestGetStats(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	stats, err := f.uc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.Stats{}, *stats)

	for _, status := range []entity.Status{
		entity.StatusActive, entity.StatusActive, entity.StatusActive, entity.StatusPending, entity.StatusSuspended,
	} {
		in := saleInput()
		in.Status = status
		f.create(t, admin, in)
	}

	f.stats.Invalidate(ctx)
	stats, err = f.uc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(3), stats.Active)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Suspended)
	assert.Zero(t, stats.Featured)
}

func TestGetStats_ServedFromCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.stats.Set(ctx, &entity.Stats{Total: 42})

	stats, err := f.uc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), stats.Total)
}

func TestInvalidateOnChange(t *testing.T) {
	hub := realtime.NewHub(8, logger.NewWithWriter(io.Discard, io.Discard))
	defer hub.Close()
	cache := &memoryStatsCache{}
	cache.Set(context.Background(), &entity.Stats{Total: 1})

	stop := InvalidateOnChange(hub, cache, 10*time.Millisecond)
	defer stop()

	for i := 0; i < 5; i++ {
		hub.Publish(context.Background(), realtime.Event{Table: realtime.TableListings, Type: realtime.EventUpdate})
	}

	assert.Eventually(t, func() bool {
		cache.mu.Lock()
		defer cache.mu.Unlock()
		return cache.invalidated == 1 && cache.stats == nil
	}, time.Second, 5*time.Millisecond)
}

func TestInvalidateOnChange_SteadyTraffic(t *testing.T) {
	hub := realtime.NewHub(64, logger.NewWithWriter(io.Discard, io.Discard))
	defer hub.Close()
	cache := &memoryStatsCache{}
	cache.Set(context.Background(), &entity.Stats{Total: 1})

	stop := InvalidateOnChange(hub, cache, 20*time.Millisecond)
	defer stop()

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		hub.Publish(context.Background(), realtime.Event{Table: realtime.TableListings, Type: realtime.EventUpdate})
		time.Sleep(5 * time.Millisecond)
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	assert.Nil(t, cache.stats)
	assert.GreaterOrEqual(t, cache.invalidated, 2)
}

func TestSetFeaturedAndImages(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created := f.create(t, seller, saleInput(), upload("a.jpg", "a"), upload("b.jpg", "b"))
	second := created.Images[1]

	_, err := f.uc.SetFeatured(ctx, seller, created.ID, true)
	assert.ErrorIs(t, err, entity.ErrForbidden)
	featured, err := f.uc.SetFeatured(ctx, admin, created.ID, true)
	require.NoError(t, err)
	assert.True(t, featured.Featured)

	require.NoError(t, f.uc.SetFeaturedImage(ctx, seller, created.ID, second.ID))
	got, _, _ := f.uc.GetListing(ctx, seller, created.ID)
	assert.False(t, got.Images[0].IsFeatured)
	assert.True(t, got.Images[1].IsFeatured)

	assert.ErrorIs(t, f.uc.DeleteImage(ctx, other, created.ID, second.ID), entity.ErrForbidden)
	require.NoError(t, f.uc.DeleteImage(ctx, seller, created.ID, second.ID))
	got, _, _ = f.uc.GetListing(ctx, seller, created.ID)
	assert.Len(t, got.Images, 1)
	assert.Equal(t, 1, f.storage.count())

	entries := f.log.all()
	assert.Contains(t, entries[len(entries)-2], "delete object")
	assert.Equal(t, "delete image row "+second.ID, entries[len(entries)-1])
}

func TestCreateAmenity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.CreateAmenity(ctx, seller, "Pool", "outdoor")
	assert.ErrorIs(t, err, entity.ErrForbidden)
	_, err = f.uc.CreateAmenity(ctx, admin, "  ", "outdoor")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)

	pool, err := f.uc.CreateAmenity(ctx, admin, " Pool ", "outdoor")
	require.NoError(t, err)
	assert.Equal(t, "Pool", pool.Name)

	amenities, err := f.uc.ListAmenities(ctx)
	require.NoError(t, err)
	assert.Len(t, amenities, 1)
}
