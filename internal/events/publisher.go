package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/models"
)

// Event types written to the bus
const (
	EventTypeBookingConfirmed = "BOOKING_CONFIRMED"
	EventTypeBookingFailed    = "BOOKING_FAILED"
)

// Source identifies this service in event envelopes
const Source = "travel-backend"

// BookingEvent is the envelope for booking outcomes. On failures that never
// built a booking the Booking field is null and BookingID is empty.
type BookingEvent struct {
	EventID   string                     `json:"eventId"`
	EventType string                     `json:"eventType"`
	Source    string                     `json:"source"`
	EmittedAt time.Time                  `json:"emittedAt"`
	UserID    string                     `json:"userId"`
	BookingID string                     `json:"bookingId,omitempty"`
	Booking   *models.Booking            `json:"booking"`
	Items     []models.BookingItem       `json:"items,omitempty"`
	Billing   *models.BillingTransaction `json:"billing,omitempty"`
	ErrorCode string                     `json:"errorCode,omitempty"`
}

// NewBookingConfirmed builds the envelope for a committed booking
func NewBookingConfirmed(booking *models.Booking, items []models.BookingItem, billing *models.BillingTransaction) BookingEvent {
	return BookingEvent{
		EventID:   uuid.New().String(),
		EventType: EventTypeBookingConfirmed,
		Source:    Source,
		EmittedAt: time.Now().UTC(),
		UserID:    booking.UserID.String(),
		BookingID: booking.ID.String(),
		Booking:   booking,
		Items:     items,
		Billing:   billing,
	}
}

// NewBookingFailed builds the envelope for a rolled-back booking attempt.
// booking may be nil when the attempt failed before a header was built.
func NewBookingFailed(userID uuid.UUID, booking *models.Booking, errorCode string) BookingEvent {
	event := BookingEvent{
		EventID:   uuid.New().String(),
		EventType: EventTypeBookingFailed,
		Source:    Source,
		EmittedAt: time.Now().UTC(),
		UserID:    userID.String(),
		Booking:   booking,
		ErrorCode: errorCode,
	}
	if booking != nil {
		event.BookingID = booking.ID.String()
	}
	return event
}

// key orders events per booking on the bus; bookingless failures fall back
// to per-user ordering.
func (e BookingEvent) key() []byte {
	if e.BookingID != "" {
		return []byte(e.BookingID)
	}
	return []byte(e.UserID)
}

// Publisher emits booking outcome events. Publishing never returns an
// error: delivery problems are logged and must not disturb the caller,
// who has already committed or rolled back.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, event BookingEvent)
	PublishBookingFailed(ctx context.Context, event BookingEvent)
	Close()
}

// LogPublisher writes envelopes to the log only. It serves deployments
// without a message bus and is the base behavior tests rely on.
type LogPublisher struct {
	logger *logrus.Logger
}

var _ Publisher = (*LogPublisher)(nil)

// NewLogPublisher creates a publisher that only logs
func NewLogPublisher(logger *logrus.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// PublishBookingConfirmed logs a confirmed booking event
func (p *LogPublisher) PublishBookingConfirmed(ctx context.Context, event BookingEvent) {
	p.log(event)
}

// PublishBookingFailed logs a failed booking event
func (p *LogPublisher) PublishBookingFailed(ctx context.Context, event BookingEvent) {
	p.log(event)
}

// Close implements Publisher
func (p *LogPublisher) Close() {}

func (p *LogPublisher) log(event BookingEvent) {
	p.logger.WithFields(logrus.Fields{
		"event_id":   event.EventID,
		"event_type": event.EventType,
		"booking_id": event.BookingID,
		"user_id":    event.UserID,
		"error_code": event.ErrorCode,
	}).Info("Booking event emitted (log only)")
}

// MockPublisher records published events for tests
type MockPublisher struct {
	mu        sync.Mutex
	Confirmed []BookingEvent
	Failed    []BookingEvent
	Closed    bool
}

var _ Publisher = (*MockPublisher)(nil)

// NewMockPublisher creates a recording publisher
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishBookingConfirmed(ctx context.Context, event BookingEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Confirmed = append(m.Confirmed, event)
}

func (m *MockPublisher) PublishBookingFailed(ctx context.Context, event BookingEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed = append(m.Failed, event)
}

func (m *MockPublisher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
}

// Events returns copies of the recorded slices
func (m *MockPublisher) Events() (confirmed, failed []BookingEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	confirmed = append(confirmed, m.Confirmed...)
	failed = append(failed, m.Failed...)
	return confirmed, failed
}
