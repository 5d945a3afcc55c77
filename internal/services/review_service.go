package services

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/models"
)

// Review list defaults
const (
	defaultReviewLimit = 20
	maxReviewLimit     = 100
)

// reviewStore is the slice of the document store the review service needs.
// Narrowed to an interface so tests can run without a live server.
type reviewStore interface {
	Insert(ctx context.Context, review *models.Review) error
	List(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int64, error)
	RatingCounts(ctx context.Context, listingType, listingID string) (map[int]int64, error)
}

// ReviewService handles business logic for listing reviews
type ReviewService struct {
	store  reviewStore
	logger *logrus.Logger
}

// NewReviewService creates a new review service
func NewReviewService(store reviewStore, logger *logrus.Logger) *ReviewService {
	return &ReviewService{
		store:  store,
		logger: logger,
	}
}

// CreateReview validates and stores one review per (user, listing). The
// bookingId is stored as given; reviews outlive the bookings behind them.
func (s *ReviewService) CreateReview(ctx context.Context, userID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error) {
	listingType := strings.ToUpper(strings.TrimSpace(req.ListingType))
	if !models.ValidListingType(listingType) {
		return nil, models.ErrInvalidListingType
	}

	listingID := strings.TrimSpace(req.ListingID)
	if listingID == "" {
		return nil, models.ErrInvalidListingID
	}

	if req.Rating < 1 || req.Rating > 5 {
		return nil, models.ErrInvalidRating
	}

	review := &models.Review{
		UserID:      userID.String(),
		ListingType: listingType,
		ListingID:   listingID,
		BookingID:   strings.TrimSpace(req.BookingID),
		Rating:      req.Rating,
		Title:       strings.TrimSpace(req.Title),
		Comment:     strings.TrimSpace(req.Comment),
		StayDate:    req.StayDate,
		Metadata:    req.Metadata,
	}

	if err := s.store.Insert(ctx, review); err != nil {
		if _, ok := models.AsAppError(err); ok {
			return nil, err
		}
		s.logger.WithError(err).Error("Failed to insert review")
		return nil, models.Internal(err)
	}

	s.logger.WithFields(logrus.Fields{
		"review_id":    review.ID,
		"user_id":      review.UserID,
		"listing_type": review.ListingType,
		"listing_id":   review.ListingID,
		"rating":       review.Rating,
	}).Info("Review created")

	return review, nil
}

// ListReviews returns reviews newest first. userID is nil for anonymous
// callers; my=true narrows to the caller's own reviews and requires auth.
func (s *ReviewService) ListReviews(ctx context.Context, query *models.ReviewListQuery, userID *uuid.UUID) ([]models.Review, int64, error) {
	filter := models.ReviewFilter{
		Limit:  parseReviewLimit(query.Limit),
		Offset: parseOffset(query.Offset),
	}

	if raw := strings.ToUpper(strings.TrimSpace(query.ListingType)); raw != "" {
		if !models.ValidListingType(raw) {
			return nil, 0, models.ErrInvalidListingType
		}
		filter.ListingType = raw
	}
	filter.ListingID = strings.TrimSpace(query.ListingID)

	if mine, _ := strconv.ParseBool(query.My); mine {
		if userID == nil {
			return nil, 0, models.ErrTokenMissing
		}
		filter.UserID = userID.String()
	}

	reviews, total, err := s.store.List(ctx, filter)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list reviews")
		return nil, 0, models.Internal(err)
	}

	return reviews, total, nil
}

// Distribution aggregates one listing's ratings into five buckets with
// percentages and a two-decimal average, null when there are no reviews.
func (s *ReviewService) Distribution(ctx context.Context, listingTypeRaw, listingIDRaw string) (*models.ReviewDistribution, error) {
	listingType := strings.ToUpper(strings.TrimSpace(listingTypeRaw))
	if !models.ValidListingType(listingType) {
		return nil, models.ErrInvalidListingType
	}

	listingID := strings.TrimSpace(listingIDRaw)
	if listingID == "" {
		return nil, models.ErrInvalidListingID
	}

	counts, err := s.store.RatingCounts(ctx, listingType, listingID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to aggregate rating counts")
		return nil, models.Internal(err)
	}

	dist := &models.ReviewDistribution{
		ListingType: listingType,
		ListingID:   listingID,
		Buckets:     make([]models.RatingBucket, 0, 5),
	}

	var ratingSum int64
	for rating := 1; rating <= 5; rating++ {
		count := counts[rating]
		dist.TotalReviews += count
		ratingSum += int64(rating) * count
	}

	for rating := 1; rating <= 5; rating++ {
		bucket := models.RatingBucket{Rating: rating, Count: counts[rating]}
		if dist.TotalReviews > 0 {
			bucket.Percentage = roundTo(float64(bucket.Count)*100/float64(dist.TotalReviews), 1)
		}
		dist.Buckets = append(dist.Buckets, bucket)
	}

	if dist.TotalReviews > 0 {
		avg := roundTo(float64(ratingSum)/float64(dist.TotalReviews), 2)
		dist.AverageRating = &avg
	}

	return dist, nil
}

// roundTo rounds to the given number of decimal places
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// parseReviewLimit clamps the review page size into [1, 100], defaulting 20
func parseReviewLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultReviewLimit
	}
	if n < 1 {
		return 1
	}
	if n > maxReviewLimit {
		return maxReviewLimit
	}
	return n
}

// parseOffset treats anything unparseable or negative as zero
func parseOffset(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
