package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripstack/travel-backend/internal/config"
	"github.com/tripstack/travel-backend/internal/models"
)

const chromeDesktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type fakeClickstreamStore struct {
	mu         sync.Mutex
	batches    [][]models.ClickstreamEvent
	insertErr  error
	block      chan struct{}
	started    chan struct{}
	session    []models.ClickstreamEvent
	sessionErr error
}

func (f *fakeClickstreamStore) InsertMany(_ context.Context, events []models.ClickstreamEvent) error {
	if f.block != nil {
		f.started <- struct{}{}
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	// The worker reuses its batch slice between flushes, so keep a copy.
	batch := make([]models.ClickstreamEvent, len(events))
	copy(batch, events)
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeClickstreamStore) SessionEvents(_ context.Context, _ string) ([]models.ClickstreamEvent, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeClickstreamStore) stored() []models.ClickstreamEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.ClickstreamEvent
	for _, batch := range f.batches {
		all = append(all, batch...)
	}
	return all
}

func (f *fakeClickstreamStore) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func newTestClickstreamService(t *testing.T, store *fakeClickstreamStore, cfg config.ClickstreamConfig) *ClickstreamService {
	t.Helper()

	svc := NewClickstreamService(store, cfg, newTestLogger())
	t.Cleanup(svc.Close)
	return svc
}

func waitForStored(t *testing.T, store *fakeClickstreamStore, want int) []models.ClickstreamEvent {
	t.Helper()

	require.Eventually(t, func() bool {
		return len(store.stored()) >= want
	}, 2*time.Second, 10*time.Millisecond)

	events := store.stored()
	require.Len(t, events, want)
	return events
}

func TestTrack(t *testing.T) {
	t.Run("Enriches And Stores The Event", func(t *testing.T) {
		store := &fakeClickstreamStore{}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{
			QueueSize:     16,
			BatchSize:     1,
			FlushInterval: time.Minute,
			Workers:       1,
		})

		userID := uuid.New()
		event, err := svc.Track(&models.TrackEventRequest{
			EventType:    " click ",
			Page:         "  /flights/search  ",
			ElementID:    "book-btn",
			ElementLabel: "Book now",
			ListingType:  "flight",
			ListingID:    "f7a3b62e-51f0-4f3b-9c0e-0b6f6f1d2a9c",
			Metadata:     map[string]interface{}{"position": 3},
		}, ClientContext{UserID: &userID, IP: "203.0.113.7", UserAgent: chromeDesktopUA})

		require.NoError(t, err)
		assert.Equal(t, models.EventTypeClick, event.EventType)
		assert.Equal(t, "/flights/search", event.Page)
		assert.Equal(t, userID.String(), event.UserID)
		assert.Equal(t, "FLIGHT", event.ListingType)
		assert.Equal(t, "203.0.113.7", event.IP)
		assert.Equal(t, chromeDesktopUA, event.UserAgent)
		assert.False(t, event.CreatedAt.IsZero())

		_, parseErr := uuid.Parse(event.SessionID)
		assert.NoError(t, parseErr, "anonymous events get a generated session id")

		assert.Equal(t, 3, event.Metadata["position"])
		device, ok := event.Metadata["device"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Chrome", device["browser"])
		assert.Equal(t, "desktop", device["deviceType"])

		stored := waitForStored(t, store, 1)
		assert.Equal(t, event.SessionID, stored[0].SessionID)
		assert.Equal(t, models.EventTypeClick, stored[0].EventType)
	})

	t.Run("Keeps The Caller Session Id", func(t *testing.T) {
		store := &fakeClickstreamStore{}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{
			QueueSize:     16,
			BatchSize:     1,
			FlushInterval: time.Minute,
			Workers:       1,
		})

		event, err := svc.Track(&models.TrackEventRequest{
			EventType: "PAGE_VIEW",
			Page:      "/hotels",
			SessionID: "sess-abc",
		}, ClientContext{IP: "198.51.100.9"})

		require.NoError(t, err)
		assert.Equal(t, "sess-abc", event.SessionID)
	})

	t.Run("Anonymous Events Carry No User", func(t *testing.T) {
		store := &fakeClickstreamStore{}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{
			QueueSize:     16,
			BatchSize:     1,
			FlushInterval: time.Minute,
			Workers:       1,
		})

		event, err := svc.Track(&models.TrackEventRequest{
			EventType: "PAGE_VIEW",
			Page:      "/cars",
		}, ClientContext{IP: "198.51.100.9"})

		require.NoError(t, err)
		assert.Empty(t, event.UserID)
		assert.Nil(t, event.Metadata, "no device block without a user agent")
	})

	t.Run("Rejects Unknown Event Type", func(t *testing.T) {
		store := &fakeClickstreamStore{}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{
			QueueSize:     16,
			BatchSize:     1,
			FlushInterval: time.Minute,
			Workers:       1,
		})

		event, err := svc.Track(&models.TrackEventRequest{
			EventType: "HOVER",
			Page:      "/flights",
		}, ClientContext{})

		assert.Nil(t, event)
		appErr, ok := models.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "invalid_event_type", appErr.Code)
		assert.Zero(t, store.batchCount())
	})

	t.Run("Requires A Page", func(t *testing.T) {
		store := &fakeClickstreamStore{}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{
			QueueSize:     16,
			BatchSize:     1,
			FlushInterval: time.Minute,
			Workers:       1,
		})

		_, err := svc.Track(&models.TrackEventRequest{
			EventType: "PAGE_VIEW",
			Page:      "   ",
		}, ClientContext{})

		appErr, ok := models.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "missing_page", appErr.Code)
	})
}

func TestTrackBatch(t *testing.T) {
	t.Run("Accepts Valid Events And Skips Bad Ones", func(t *testing.T) {
		store := &fakeClickstreamStore{}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{
			QueueSize:     16,
			BatchSize:     10,
			FlushInterval: 20 * time.Millisecond,
			Workers:       1,
		})

		accepted, err := svc.TrackBatch([]models.TrackEventRequest{
			{EventType: "PAGE_VIEW", Page: "/a", SessionID: "sess-1"},
			{EventType: "CLICK", SessionID: "sess-1"},
			{EventType: "CLICK", Page: "/b", SessionID: "sess-1"},
		}, ClientContext{})

		require.NoError(t, err)
		assert.Equal(t, 2, accepted)

		stored := waitForStored(t, store, 2)
		assert.Equal(t, "/a", stored[0].Page)
		assert.Equal(t, "/b", stored[1].Page)
	})

	t.Run("Rejects Oversized Batches", func(t *testing.T) {
		store := &fakeClickstreamStore{}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{
			QueueSize:     256,
			BatchSize:     10,
			FlushInterval: time.Minute,
			Workers:       1,
		})

		reqs := make([]models.TrackEventRequest, maxTrackBatch+1)
		for i := range reqs {
			reqs[i] = models.TrackEventRequest{EventType: "PAGE_VIEW", Page: "/a"}
		}

		accepted, err := svc.TrackBatch(reqs, ClientContext{})

		assert.Zero(t, accepted)
		appErr, ok := models.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "batch_too_large", appErr.Code)
	})

	t.Run("Empty Batch Is A No-Op", func(t *testing.T) {
		store := &fakeClickstreamStore{}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{
			QueueSize:     16,
			BatchSize:     10,
			FlushInterval: time.Minute,
			Workers:       1,
		})

		accepted, err := svc.TrackBatch(nil, ClientContext{})

		require.NoError(t, err)
		assert.Zero(t, accepted)
	})
}

func TestClickstreamFlush(t *testing.T) {
	t.Run("Flushes When The Batch Fills", func(t *testing.T) {
		store := &fakeClickstreamStore{}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{
			QueueSize:     16,
			BatchSize:     3,
			FlushInterval: time.Minute,
			Workers:       1,
		})

		for i := 0; i < 3; i++ {
			_, err := svc.Track(&models.TrackEventRequest{
				EventType: "PAGE_VIEW",
				Page:      fmt.Sprintf("/page-%d", i),
				SessionID: "sess-1",
			}, ClientContext{})
			require.NoError(t, err)
		}

		waitForStored(t, store, 3)
		assert.Equal(t, 1, store.batchCount(), "a full batch flushes as one write")
	})

	t.Run("Flushes On The Timer", func(t *testing.T) {
		store := &fakeClickstreamStore{}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{
			QueueSize:     16,
			BatchSize:     100,
			FlushInterval: 20 * time.Millisecond,
			Workers:       1,
		})

		for i := 0; i < 2; i++ {
			_, err := svc.Track(&models.TrackEventRequest{
				EventType: "PAGE_VIEW",
				Page:      fmt.Sprintf("/page-%d", i),
				SessionID: "sess-1",
			}, ClientContext{})
			require.NoError(t, err)
		}

		waitForStored(t, store, 2)
	})

	t.Run("Drains Pending Events On Close", func(t *testing.T) {
		store := &fakeClickstreamStore{}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{
			QueueSize:     64,
			BatchSize:     100,
			FlushInterval: time.Minute,
			Workers:       2,
		})

		for i := 0; i < 5; i++ {
			_, err := svc.Track(&models.TrackEventRequest{
				EventType: "PAGE_VIEW",
				Page:      fmt.Sprintf("/page-%d", i),
				SessionID: "sess-1",
			}, ClientContext{})
			require.NoError(t, err)
		}

		svc.Close()

		assert.Len(t, store.stored(), 5)
	})

	t.Run("Drops When The Queue Is Full", func(t *testing.T) {
		store := &fakeClickstreamStore{
			block:   make(chan struct{}),
			started: make(chan struct{}, 4),
		}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{
			QueueSize:     1,
			BatchSize:     1,
			FlushInterval: time.Minute,
			Workers:       1,
		})

		// First event: the worker picks it up and blocks inside the store.
		_, err := svc.Track(&models.TrackEventRequest{
			EventType: "PAGE_VIEW", Page: "/kept-1", SessionID: "sess-1",
		}, ClientContext{})
		require.NoError(t, err)
		<-store.started

		// Second event fills the queue; the third finds it full.
		_, err = svc.Track(&models.TrackEventRequest{
			EventType: "PAGE_VIEW", Page: "/kept-2", SessionID: "sess-1",
		}, ClientContext{})
		require.NoError(t, err)

		accepted, err := svc.TrackBatch([]models.TrackEventRequest{
			{EventType: "PAGE_VIEW", Page: "/dropped", SessionID: "sess-1"},
		}, ClientContext{})
		require.NoError(t, err)
		assert.Zero(t, accepted)

		close(store.block)
		svc.Close()

		pages := []string{}
		for _, event := range store.stored() {
			pages = append(pages, event.Page)
		}
		assert.ElementsMatch(t, []string{"/kept-1", "/kept-2"}, pages)
	})

	t.Run("Survives Store Failures", func(t *testing.T) {
		store := &fakeClickstreamStore{insertErr: errors.New("server selection timeout")}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{
			QueueSize:     16,
			BatchSize:     1,
			FlushInterval: time.Minute,
			Workers:       1,
		})

		_, err := svc.Track(&models.TrackEventRequest{
			EventType: "PAGE_VIEW",
			Page:      "/home",
			SessionID: "sess-1",
		}, ClientContext{})
		require.NoError(t, err)

		svc.Close()

		assert.Zero(t, store.batchCount(), "failed batches are dropped, not retried")
	})
}

func TestSession(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	ownedSession := []models.ClickstreamEvent{
		{SessionID: "sess-1", EventType: models.EventTypePageView, Page: "/home", CreatedAt: base},
		{SessionID: "sess-1", UserID: owner.String(), EventType: models.EventTypeClick, Page: "/flights", CreatedAt: base.Add(30 * time.Second)},
		{SessionID: "sess-1", UserID: owner.String(), EventType: models.EventTypePageView, Page: "/home", CreatedAt: base.Add(90 * time.Second)},
	}

	t.Run("Owner Reads Own Session", func(t *testing.T) {
		store := &fakeClickstreamStore{session: ownedSession}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{})

		stats, err := svc.Session(context.Background(), "sess-1", owner, false)

		require.NoError(t, err)
		assert.Equal(t, "sess-1", stats.SessionID)
		assert.Equal(t, 3, stats.EventCount)
		assert.Equal(t, map[string]int{
			models.EventTypePageView: 2,
			models.EventTypeClick:    1,
		}, stats.ByType)
		assert.Equal(t, []string{"/home", "/flights"}, stats.Pages)
		require.NotNil(t, stats.FirstAt)
		require.NotNil(t, stats.LastAt)
		assert.True(t, stats.FirstAt.Equal(base))
		assert.True(t, stats.LastAt.Equal(base.Add(90*time.Second)))
		assert.Len(t, stats.Events, 3)
	})

	t.Run("Hidden From Strangers", func(t *testing.T) {
		store := &fakeClickstreamStore{session: ownedSession}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{})

		stats, err := svc.Session(context.Background(), "sess-1", stranger, false)

		assert.Nil(t, stats)
		appErr, ok := models.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "forbidden", appErr.Code)
	})

	t.Run("Admin Reads Any Session", func(t *testing.T) {
		store := &fakeClickstreamStore{session: ownedSession}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{})

		stats, err := svc.Session(context.Background(), "sess-1", stranger, true)

		require.NoError(t, err)
		assert.Equal(t, 3, stats.EventCount)
	})

	t.Run("Anonymous Sessions Are Readable By Anyone", func(t *testing.T) {
		store := &fakeClickstreamStore{session: []models.ClickstreamEvent{
			{SessionID: "sess-2", EventType: models.EventTypePageView, Page: "/home", CreatedAt: base},
		}}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{})

		stats, err := svc.Session(context.Background(), "sess-2", stranger, false)

		require.NoError(t, err)
		assert.Equal(t, 1, stats.EventCount)
	})

	t.Run("Empty Session Yields Empty Stats", func(t *testing.T) {
		store := &fakeClickstreamStore{}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{})

		stats, err := svc.Session(context.Background(), "sess-gone", stranger, false)

		require.NoError(t, err)
		assert.Zero(t, stats.EventCount)
		assert.Empty(t, stats.Pages)
		assert.Nil(t, stats.FirstAt)
		assert.Nil(t, stats.LastAt)
	})

	t.Run("Store Failure Is Internal", func(t *testing.T) {
		store := &fakeClickstreamStore{sessionErr: errors.New("server selection timeout")}
		svc := newTestClickstreamService(t, store, config.ClickstreamConfig{})

		_, err := svc.Session(context.Background(), "sess-1", owner, false)

		appErr, ok := models.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "internal_error", appErr.Code)
	})
}
