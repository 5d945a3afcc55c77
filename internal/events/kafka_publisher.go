package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/tripstack/travel-backend/internal/config"
)

const produceTimeout = 5 * time.Second

// recordProducer is the slice of *kgo.Client the publisher needs
type recordProducer interface {
	ProduceSync(ctx context.Context, records ...*kgo.Record) kgo.ProduceResults
	Close()
}

// KafkaPublisher ships booking events to the bus from a single background
// worker. Enqueueing never blocks: when the queue is full the event is
// logged and dropped, so a slow broker cannot stall booking requests.
type KafkaPublisher struct {
	producer   recordProducer
	topic      string
	maxRetries int
	logger     *logrus.Logger

	queue    chan *kgo.Record
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher connects to the brokers, verifies them with a ping and
// starts the delivery worker.
func NewKafkaPublisher(ctx context.Context, cfg config.EventBusConfig, logger *logrus.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("event bus brokers are required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping kafka: %w", err)
	}

	p := newKafkaPublisher(client, cfg, logger)

	logger.WithFields(logrus.Fields{
		"brokers": cfg.Brokers,
		"topic":   cfg.Topic,
	}).Info("Kafka event publisher started")

	return p, nil
}

func newKafkaPublisher(producer recordProducer, cfg config.EventBusConfig, logger *logrus.Logger) *KafkaPublisher {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}

	p := &KafkaPublisher{
		producer:   producer,
		topic:      cfg.Topic,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
		queue:      make(chan *kgo.Record, queueSize),
		stopCh:     make(chan struct{}),
	}

	p.wg.Add(1)
	go p.run()

	return p
}

// PublishBookingConfirmed enqueues a confirmed booking event
func (p *KafkaPublisher) PublishBookingConfirmed(ctx context.Context, event BookingEvent) {
	p.enqueue(event)
}

// PublishBookingFailed enqueues a failed booking event
func (p *KafkaPublisher) PublishBookingFailed(ctx context.Context, event BookingEvent) {
	p.enqueue(event)
}

// Close stops the worker after draining queued events, then closes the
// underlying client. Safe to call more than once.
func (p *KafkaPublisher) Close() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
		p.wg.Wait()
		p.producer.Close()
	})
}

func (p *KafkaPublisher) enqueue(event BookingEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).WithField("event_id", event.EventID).Error("Failed to marshal booking event")
		return
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   event.key(),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "source", Value: []byte(event.Source)},
		},
	}

	select {
	case p.queue <- record:
	default:
		p.logger.WithFields(logrus.Fields{
			"event_id":   event.EventID,
			"event_type": event.EventType,
			"booking_id": event.BookingID,
		}).Error("Event queue full, dropping booking event")
	}
}

func (p *KafkaPublisher) run() {
	defer p.wg.Done()

	for {
		select {
		case record := <-p.queue:
			p.deliver(record)
		case <-p.stopCh:
			// Drain whatever was enqueued before Close
			for {
				select {
				case record := <-p.queue:
					p.deliver(record)
				default:
					return
				}
			}
		}
	}
}

// deliver retries with exponential backoff; after maxRetries the event is
// logged and dropped rather than wedging the worker.
func (p *KafkaPublisher) deliver(record *kgo.Record) {
	backoff := 100 * time.Millisecond

	for attempt := 0; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), produceTimeout)
		err := p.producer.ProduceSync(ctx, record).FirstErr()
		cancel()

		if err == nil {
			return
		}

		if attempt >= p.maxRetries {
			p.logger.WithError(err).WithFields(logrus.Fields{
				"topic":    record.Topic,
				"key":      string(record.Key),
				"attempts": attempt + 1,
			}).Error("Dropping booking event after repeated produce failures")
			return
		}

		p.logger.WithError(err).WithFields(logrus.Fields{
			"topic":   record.Topic,
			"key":     string(record.Key),
			"attempt": attempt + 1,
		}).Warn("Failed to produce booking event, retrying")

		time.Sleep(backoff)
		backoff *= 2
	}
}
