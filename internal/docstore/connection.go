package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tripstack/travel-backend/internal/config"
)

// Collection names
const (
	CollectionReviews           = "reviews"
	CollectionClickstreamEvents = "clickstream_events"
	CollectionDealSnapshots     = "deal_snapshots"
	CollectionAdminAuditLogs    = "admin_audit_logs"
)

// Store wraps the document database handle
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens the document store connection and verifies it with a ping
func Connect(ctx context.Context, cfg config.DocumentConfig) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("document store URL is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping document store: %w", err)
	}

	return &Store{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

// Reviews returns the reviews collection
func (s *Store) Reviews() *mongo.Collection {
	return s.db.Collection(CollectionReviews)
}

// ClickstreamEvents returns the clickstream events collection
func (s *Store) ClickstreamEvents() *mongo.Collection {
	return s.db.Collection(CollectionClickstreamEvents)
}

// EnsureIndexes creates the secondary indexes the read paths depend on.
// Creation is idempotent; existing indexes are left untouched.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	reviewIndexes := []mongo.IndexModel{
		{
			// One review per user per listing
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "listing_type", Value: 1},
				{Key: "listing_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "listing_type", Value: 1},
				{Key: "listing_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
	}
	if _, err := s.Reviews().Indexes().CreateMany(ctx, reviewIndexes); err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}

	clickstreamIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "session_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "page", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "listing_type", Value: 1},
				{Key: "listing_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
		},
	}
	if _, err := s.ClickstreamEvents().Indexes().CreateMany(ctx, clickstreamIndexes); err != nil {
		return fmt.Errorf("failed to create clickstream indexes: %w", err)
	}

	// Written by out-of-band workers; indexed here so their readers stay fast
	recencyOnly := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := s.db.Collection(CollectionDealSnapshots).Indexes().CreateMany(ctx, recencyOnly); err != nil {
		return fmt.Errorf("failed to create deal snapshot indexes: %w", err)
	}
	if _, err := s.db.Collection(CollectionAdminAuditLogs).Indexes().CreateMany(ctx, recencyOnly); err != nil {
		return fmt.Errorf("failed to create audit log indexes: %w", err)
	}

	return nil
}

// Ping verifies the connection is still healthy
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from the document store
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
