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

// ReviewRepository handles review documents
type ReviewRepository struct {
	coll *mongo.Collection
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(store *Store) *ReviewRepository {
	return &ReviewRepository{
		coll: store.Reviews(),
	}
}

// Insert stores a new review. The unique (user, listing) index turns a second
// review of the same listing into a duplicate_review conflict.
func (r *ReviewRepository) Insert(ctx context.Context, review *models.Review) error {
	now := time.Now().UTC()
	review.ID = primitive.NewObjectID().Hex()
	review.CreatedAt = now
	review.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ErrDuplicateReview
		}
		return storeError("insert review", err)
	}

	return nil
}

// List returns reviews matching the filter, newest first, with the total
// count of matches.
func (r *ReviewRepository) List(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int64, error) {
	query := bson.M{}
	if filter.ListingType != "" {
		query["listing_type"] = filter.ListingType
	}
	if filter.ListingID != "" {
		query["listing_id"] = filter.ListingID
	}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, storeError("count reviews", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(filter.Limit)).
		SetSkip(int64(filter.Offset))

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, storeError("list reviews", err)
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, storeError("decode reviews", err)
	}

	return reviews, total, nil
}

// RatingCounts aggregates how many reviews gave each rating to a listing
func (r *ReviewRepository) RatingCounts(ctx context.Context, listingType, listingID string) (map[int]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "listing_type", Value: listingType},
			{Key: "listing_id", Value: listingID},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$rating"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeError("aggregate ratings", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Rating int   `bson:"_id"`
		Count  int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storeError("decode rating counts", err)
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Count
	}

	return counts, nil
}
