package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/config"
	"github.com/tripstack/travel-backend/internal/models"
	"github.com/tripstack/travel-backend/internal/utils"
)

const (
	// maxTrackBatch bounds POST /api/analytics/track/batch
	maxTrackBatch = 100

	// insertTimeout bounds one background InsertMany call
	insertTimeout = 10 * time.Second
)

// ClientContext carries the request facts used to enrich events server-side
type ClientContext struct {
	UserID    *uuid.UUID
	IP        string
	UserAgent string
}

// clickstreamStore is the slice of the document store the ingest needs.
// Narrowed to an interface so tests can run without a live server.
type clickstreamStore interface {
	InsertMany(ctx context.Context, events []models.ClickstreamEvent) error
	SessionEvents(ctx context.Context, sessionID string) ([]models.ClickstreamEvent, error)
}

// ClickstreamService buffers interaction events on a bounded queue and
// batch-writes them in the background. Tracking is fire-and-forget: the API
// answers before storage, and a full queue drops rather than blocks.
type ClickstreamService struct {
	store         clickstreamStore
	batchSize     int
	flushInterval time.Duration
	logger        *logrus.Logger

	queue    chan models.ClickstreamEvent
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewClickstreamService creates the service and starts its ingest workers
func NewClickstreamService(store clickstreamStore, cfg config.ClickstreamConfig, logger *logrus.Logger) *ClickstreamService {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 4096
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	s := &ClickstreamService{
		store:         store,
		batchSize:     batchSize,
		flushInterval: flushInterval,
		logger:        logger,
		queue:         make(chan models.ClickstreamEvent, queueSize),
		stopCh:        make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.run()
	}

	return s
}

// Track validates and enqueues a single event. The returned event carries the
// generated session id so anonymous clients can keep it for the session.
func (s *ClickstreamService) Track(req *models.TrackEventRequest, client ClientContext) (*models.ClickstreamEvent, error) {
	event, err := s.buildEvent(req, client)
	if err != nil {
		return nil, err
	}

	s.enqueue(*event)
	return event, nil
}

// TrackBatch validates and enqueues up to maxTrackBatch events. Invalid
// entries are logged and skipped; the accepted count is returned.
func (s *ClickstreamService) TrackBatch(reqs []models.TrackEventRequest, client ClientContext) (int, error) {
	if len(reqs) > maxTrackBatch {
		return 0, models.ErrBatchTooLarge
	}

	accepted := 0
	for i := range reqs {
		event, err := s.buildEvent(&reqs[i], client)
		if err != nil {
			s.logger.WithError(err).WithField("index", i).Debug("Skipping invalid clickstream event")
			continue
		}
		if s.enqueue(*event) {
			accepted++
		}
	}

	return accepted, nil
}

// Session returns one session's events in arrival order plus summary stats.
// Non-admins may only read sessions that carry no other user's id.
func (s *ClickstreamService) Session(ctx context.Context, sessionID string, requesterID uuid.UUID, isAdmin bool) (*models.SessionStats, error) {
	events, err := s.store.SessionEvents(ctx, sessionID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load session events")
		return nil, models.Internal(err)
	}

	if !isAdmin {
		requester := requesterID.String()
		for _, event := range events {
			if event.UserID != "" && event.UserID != requester {
				return nil, models.ErrForbidden
			}
		}
	}

	stats := &models.SessionStats{
		SessionID: sessionID,
		ByType:    map[string]int{},
		Pages:     []string{},
		Events:    events,
	}

	seenPages := map[string]bool{}
	for i := range events {
		stats.EventCount++
		stats.ByType[events[i].EventType]++
		if !seenPages[events[i].Page] {
			seenPages[events[i].Page] = true
			stats.Pages = append(stats.Pages, events[i].Page)
		}
	}

	if len(events) > 0 {
		stats.FirstAt = &events[0].CreatedAt
		stats.LastAt = &events[len(events)-1].CreatedAt
	}

	return stats, nil
}

// Close stops the workers after draining the queue
func (s *ClickstreamService) Close() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}

func (s *ClickstreamService) buildEvent(req *models.TrackEventRequest, client ClientContext) (*models.ClickstreamEvent, error) {
	eventType := strings.ToUpper(strings.TrimSpace(req.EventType))
	if !models.ValidEventType(eventType) {
		return nil, models.ErrInvalidEventType
	}

	page := strings.TrimSpace(req.Page)
	if page == "" {
		return nil, models.MissingField("page")
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	event := &models.ClickstreamEvent{
		SessionID:    sessionID,
		EventType:    eventType,
		Page:         page,
		Referrer:     strings.TrimSpace(req.Referrer),
		ElementID:    strings.TrimSpace(req.ElementID),
		ElementLabel: strings.TrimSpace(req.ElementLabel),
		ListingType:  strings.ToUpper(strings.TrimSpace(req.ListingType)),
		ListingID:    strings.TrimSpace(req.ListingID),
		IP:           client.IP,
		UserAgent:    client.UserAgent,
		Metadata:     req.Metadata,
		CreatedAt:    time.Now().UTC(),
	}

	if client.UserID != nil {
		event.UserID = client.UserID.String()
	}

	if client.UserAgent != "" {
		device := utils.ParseUserAgent(client.UserAgent)
		if event.Metadata == nil {
			event.Metadata = map[string]interface{}{}
		}
		event.Metadata["device"] = map[string]interface{}{
			"browser":        device.Browser,
			"browserVersion": device.BrowserVer,
			"os":             device.OS,
			"deviceType":     device.DeviceType,
			"platform":       device.Platform,
		}
	}

	return event, nil
}

func (s *ClickstreamService) enqueue(event models.ClickstreamEvent) bool {
	select {
	case s.queue <- event:
		return true
	default:
		s.logger.WithFields(logrus.Fields{
			"session_id": event.SessionID,
			"event_type": event.EventType,
		}).Warn("Clickstream queue full, dropping event")
		return false
	}
}

// run is one ingest worker: it accumulates a batch and flushes on size, on a
// timer, or on shutdown after draining what is left.
func (s *ClickstreamService) run() {
	defer s.wg.Done()

	batch := make([]models.ClickstreamEvent, 0, s.batchSize)
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
		if err := s.store.InsertMany(ctx, batch); err != nil {
			s.logger.WithError(err).WithField("batch_size", len(batch)).Error("Failed to flush clickstream batch")
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case event := <-s.queue:
			batch = append(batch, event)
			if len(batch) >= s.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			for {
				select {
				case event := <-s.queue:
					batch = append(batch, event)
					if len(batch) >= s.batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}
