package realtime

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"estate-market/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard, io.Discard)
}

func listingEvent() Event {
	return Event{Table: TableListings, Type: EventUpdate, RecordID: "listing-1", At: time.Now()}
}

func TestHub_EverySubscriberReceivesOnce(t *testing.T) {
	hub := NewHub(8, quietLogger())
	defer hub.Close()

	var adminCalls, sellerCalls int32
	adminGot := make(chan Event, 4)
	sellerGot := make(chan Event, 4)

	hub.Subscribe([]string{TableListings}, func(ev Event) {
		atomic.AddInt32(&adminCalls, 1)
		adminGot <- ev
	})
	hub.Subscribe([]string{TableListings, TableInquiries}, func(ev Event) {
		atomic.AddInt32(&sellerCalls, 1)
		sellerGot <- ev
	})

	hub.Publish(context.Background(), listingEvent())

	for _, ch := range []chan Event{adminGot, sellerGot} {
		select {
		case ev := <-ch:
			assert.Equal(t, "listing-1", ev.RecordID)
		case <-time.After(time.Second):
			t.Fatal("subscriber was not called")
		}
	}

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&adminCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&sellerCalls))
}

func TestHub_TableFilter(t *testing.T) {
	hub := NewHub(8, quietLogger())
	defer hub.Close()

	got := make(chan Event, 4)
	hub.Subscribe([]string{TableInquiries}, func(ev Event) { got <- ev })

	hub.Publish(context.Background(), listingEvent())
	hub.Publish(context.Background(), Event{Table: TableInquiries, Type: EventInsert})

	select {
	case ev := <-got:
		assert.Equal(t, TableInquiries, ev.Table)
	case <-time.After(time.Second):
		t.Fatal("inquiry event not delivered")
	}
	select {
	case ev := <-got:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_NoTablesMeansAll(t *testing.T) {
	hub := NewHub(8, quietLogger())
	defer hub.Close()

	got := make(chan Event, 4)
	hub.Subscribe(nil, func(ev Event) { got <- ev })
	hub.Publish(context.Background(), Event{Table: TableListingImages, Type: EventDelete})

	select {
	case ev := <-got:
		assert.Equal(t, TableListingImages, ev.Table)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestSubscription_UnsubscribeStopsDeliveryAndIsIdempotent(t *testing.T) {
	hub := NewHub(8, quietLogger())
	defer hub.Close()

	var calls int32
	sub := hub.Subscribe([]string{TableListings}, func(Event) { atomic.AddInt32(&calls, 1) })
	require.Equal(t, 1, hub.SubscriberCount())

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.Equal(t, 0, hub.SubscriberCount())

	hub.Publish(context.Background(), listingEvent())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestHub_FullBufferDoesNotBlockPublisher(t *testing.T) {
	hub := NewHub(1, quietLogger())
	defer hub.Close()

	release := make(chan struct{})
	hub.Subscribe([]string{TableListings}, func(Event) { <-release })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Publish(context.Background(), listingEvent())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
	close(release)
}

func TestBroker_WithoutRedisPublishesLocally(t *testing.T) {
	hub := NewHub(8, quietLogger())
	defer hub.Close()
	broker := NewBroker(nil, hub, quietLogger())

	got := make(chan Event, 1)
	hub.Subscribe([]string{TableListings}, func(ev Event) { got <- ev })
	broker.Publish(context.Background(), listingEvent())

	select {
	case ev := <-got:
		assert.Equal(t, EventUpdate, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	assert.Equal(t, "realtime:listings", Channel(TableListings))
}
