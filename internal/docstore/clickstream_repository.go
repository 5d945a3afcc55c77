package docstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tripstack/travel-backend/internal/models"
)

// ClickstreamRepository handles clickstream event documents
type ClickstreamRepository struct {
	coll *mongo.Collection
}

// NewClickstreamRepository creates a new clickstream repository
func NewClickstreamRepository(store *Store) *ClickstreamRepository {
	return &ClickstreamRepository{
		coll: store.ClickstreamEvents(),
	}
}

// InsertOne stores a single event
func (r *ClickstreamRepository) InsertOne(ctx context.Context, event *models.ClickstreamEvent) error {
	stamp(event)

	if _, err := r.coll.InsertOne(ctx, event); err != nil {
		return storeError("insert clickstream event", err)
	}

	return nil
}

// InsertMany stores a batch of events. The write is unordered so one bad
// document does not reject the rest of the batch.
func (r *ClickstreamRepository) InsertMany(ctx context.Context, events []models.ClickstreamEvent) error {
	if len(events) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(events))
	for i := range events {
		stamp(&events[i])
		docs = append(docs, events[i])
	}

	opts := options.InsertMany().SetOrdered(false)
	if _, err := r.coll.InsertMany(ctx, docs, opts); err != nil {
		return storeError("insert clickstream batch", err)
	}

	return nil
}

// stamp fills the generated id and ingest timestamp
func stamp(event *models.ClickstreamEvent) {
	if event.ID == "" {
		event.ID = primitive.NewObjectID().Hex()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
}

// SessionEvents returns all events of one session in arrival order
func (r *ClickstreamRepository) SessionEvents(ctx context.Context, sessionID string) ([]models.ClickstreamEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.coll.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, storeError("load session events", err)
	}
	defer cursor.Close(ctx)

	events := []models.ClickstreamEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, storeError("decode session events", err)
	}

	return events, nil
}

// EventsByUser returns one user's events in arrival order, capped at limit
func (r *ClickstreamRepository) EventsByUser(ctx context.Context, userID string, limit int) ([]models.ClickstreamEvent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, storeError("load user events", err)
	}
	defer cursor.Close(ctx)

	events := []models.ClickstreamEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, storeError("decode user events", err)
	}

	return events, nil
}

// EventsByUsers returns the events of a user cohort ordered by user then
// time, capped at limit overall.
func (r *ClickstreamRepository) EventsByUsers(ctx context.Context, userIDs []string, limit int) ([]models.ClickstreamEvent, error) {
	if len(userIDs) == 0 {
		return []models.ClickstreamEvent{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": bson.M{"$in": userIDs}}, opts)
	if err != nil {
		return nil, storeError("load cohort events", err)
	}
	defer cursor.Close(ctx)

	events := []models.ClickstreamEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, storeError("decode cohort events", err)
	}

	return events, nil
}

// PageClickStats groups events since the cutoff by (page, eventType),
// most-clicked first.
func (r *ClickstreamRepository) PageClickStats(ctx context.Context, since time.Time, limit int) ([]models.PageClickStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "page", Value: "$page"},
				{Key: "event_type", Value: "$event_type"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "page", Value: "$_id.page"},
			{Key: "event_type", Value: "$_id.event_type"},
			{Key: "count", Value: 1},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeError("aggregate page clicks", err)
	}
	defer cursor.Close(ctx)

	stats := []models.PageClickStat{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, storeError("decode page click stats", err)
	}

	return stats, nil
}

// ListingClickStats groups events since the cutoff by listing, most-clicked
// first. Events without a listing reference are excluded.
func (r *ClickstreamRepository) ListingClickStats(ctx context.Context, since time.Time, limit int) ([]models.ListingClickStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}}},
			{Key: "listing_type", Value: bson.D{{Key: "$exists", Value: true}, {Key: "$ne", Value: ""}}},
			{Key: "listing_id", Value: bson.D{{Key: "$exists", Value: true}, {Key: "$ne", Value: ""}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "listing_type", Value: "$listing_type"},
				{Key: "listing_id", Value: "$listing_id"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "listing_type", Value: "$_id.listing_type"},
			{Key: "listing_id", Value: "$_id.listing_id"},
			{Key: "count", Value: 1},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeError("aggregate listing clicks", err)
	}
	defer cursor.Close(ctx)

	stats := []models.ListingClickStat{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, storeError("decode listing click stats", err)
	}

	return stats, nil
}
