package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripstack/travel-backend/internal/middleware"
	"github.com/tripstack/travel-backend/internal/models"
	"github.com/tripstack/travel-backend/internal/services"
)

// fakeReviewStore stands in for the review collection
type fakeReviewStore struct {
	insertErr  error
	inserted   []*models.Review
	reviews    []models.Review
	total      int64
	counts     map[int]int64
	lastFilter models.ReviewFilter
}

func (f *fakeReviewStore) Insert(ctx context.Context, review *models.Review) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	review.ID = "64f1c0ffee0123456789abcd"
	f.inserted = append(f.inserted, review)
	return nil
}

func (f *fakeReviewStore) List(ctx context.Context, filter models.ReviewFilter) ([]models.Review, int64, error) {
	f.lastFilter = filter
	return f.reviews, f.total, nil
}

func (f *fakeReviewStore) RatingCounts(ctx context.Context, listingType, listingID string) (map[int]int64, error) {
	return f.counts, nil
}

func setupReviewHandler(store *fakeReviewStore) *ReviewHandler {
	service := services.NewReviewService(store, testLogger())
	return NewReviewHandler(service, testLogger())
}

func TestCreateReview_Success(t *testing.T) {
	store := &fakeReviewStore{}
	handler := setupReviewHandler(store)

	userID := uuid.New()
	c, w := setupAuthenticatedContext(middleware.Principal{UserID: userID, Role: models.RoleUser})

	reviewReq := models.CreateReviewRequest{
		ListingType: "hotel",
		ListingID:   uuid.New().String(),
		Rating:      4,
		Title:       "Lovely stay",
	}
	body, _ := json.Marshal(reviewReq)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/reviews", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CreateReview(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Success bool           `json:"success"`
		Review  *models.Review `json:"review"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.True(t, response.Success)
	require.NotNil(t, response.Review)
	assert.Equal(t, "HOTEL", response.Review.ListingType)
	assert.Equal(t, userID.String(), response.Review.UserID)

	require.Len(t, store.inserted, 1)
	assert.Equal(t, 4, store.inserted[0].Rating)
}

func TestCreateReview_NonIntegerRating(t *testing.T) {
	store := &fakeReviewStore{}
	handler := setupReviewHandler(store)

	c, w := setupAuthenticatedContext(middleware.Principal{UserID: uuid.New(), Role: models.RoleUser})

	// 4.5 cannot decode into an integer rating
	payload := `{"listingType":"HOTEL","listingId":"h-1","rating":4.5}`
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/reviews", bytes.NewBufferString(payload))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CreateReview(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "invalid_rating", response.ErrorCode)
	assert.Empty(t, store.inserted)
}

func TestCreateReview_RatingOutOfRange(t *testing.T) {
	store := &fakeReviewStore{}
	handler := setupReviewHandler(store)

	c, w := setupAuthenticatedContext(middleware.Principal{UserID: uuid.New(), Role: models.RoleUser})

	reviewReq := models.CreateReviewRequest{ListingType: "HOTEL", ListingID: "h-1", Rating: 6}
	body, _ := json.Marshal(reviewReq)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/reviews", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CreateReview(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "invalid_rating", response.ErrorCode)
}

func TestCreateReview_Duplicate(t *testing.T) {
	store := &fakeReviewStore{insertErr: models.ErrDuplicateReview}
	handler := setupReviewHandler(store)

	c, w := setupAuthenticatedContext(middleware.Principal{UserID: uuid.New(), Role: models.RoleUser})

	reviewReq := models.CreateReviewRequest{ListingType: "HOTEL", ListingID: "h-1", Rating: 5}
	body, _ := json.Marshal(reviewReq)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/reviews", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CreateReview(c)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "duplicate_review", response.ErrorCode)
}

func TestListReviews_Anonymous(t *testing.T) {
	store := &fakeReviewStore{
		reviews: []models.Review{
			{ID: "r1", ListingType: "HOTEL", ListingID: "h-1", Rating: 5},
			{ID: "r2", ListingType: "HOTEL", ListingID: "h-1", Rating: 3},
		},
		total: 2,
	}
	handler := setupReviewHandler(store)

	c, w := setupAnonymousContext()
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/reviews?listingType=HOTEL&listingId=h-1", nil)

	handler.ListReviews(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool            `json:"success"`
		Reviews []models.Review `json:"reviews"`
		Total   int64           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.True(t, response.Success)
	assert.Len(t, response.Reviews, 2)
	assert.Equal(t, int64(2), response.Total)
	assert.Equal(t, "HOTEL", store.lastFilter.ListingType)
	assert.Equal(t, "h-1", store.lastFilter.ListingID)
	assert.Empty(t, store.lastFilter.UserID)
}

func TestListReviews_MineWithoutToken(t *testing.T) {
	store := &fakeReviewStore{}
	handler := setupReviewHandler(store)

	c, w := setupAnonymousContext()
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/reviews?my=true", nil)

	handler.ListReviews(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "token_missing", response.ErrorCode)
}

func TestListReviews_MineNarrowsToCaller(t *testing.T) {
	store := &fakeReviewStore{}
	handler := setupReviewHandler(store)

	userID := uuid.New()
	c, w := setupAuthenticatedContext(middleware.Principal{UserID: userID, Role: models.RoleUser})
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/reviews?my=true", nil)

	handler.ListReviews(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), store.lastFilter.UserID)
}

func TestDistribution_Success(t *testing.T) {
	store := &fakeReviewStore{counts: map[int]int64{5: 3, 4: 1}}
	handler := setupReviewHandler(store)

	c, w := setupAnonymousContext()
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/reviews/distribution?listingType=HOTEL&listingId=h-1", nil)

	handler.Distribution(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success      bool                       `json:"success"`
		Distribution *models.ReviewDistribution `json:"distribution"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.True(t, response.Success)
	require.NotNil(t, response.Distribution)
	assert.Equal(t, int64(4), response.Distribution.TotalReviews)
	require.NotNil(t, response.Distribution.AverageRating)
	assert.InDelta(t, 4.75, *response.Distribution.AverageRating, 0.001)
}

func TestDistribution_MissingListingType(t *testing.T) {
	store := &fakeReviewStore{}
	handler := setupReviewHandler(store)

	c, w := setupAnonymousContext()
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/reviews/distribution?listingId=h-1", nil)

	handler.Distribution(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "invalid_listing_type", response.ErrorCode)
}
