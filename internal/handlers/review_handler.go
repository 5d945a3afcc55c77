package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/middleware"
	"github.com/tripstack/travel-backend/internal/models"
	"github.com/tripstack/travel-backend/internal/services"
)

// ReviewHandler handles review submission and listing
type ReviewHandler struct {
	service *services.ReviewService
	logger  *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service *services.ReviewService, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger,
	}
}

// CreateReview handles POST /api/reviews
// @Summary Submit a review
// @Description Attach a 1-5 star review to a listing the caller has booked
// @Tags Reviews
// @Accept json
// @Produce json
// @Param review body models.CreateReviewRequest true "Review payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Validation failure"
// @Failure 409 {object} map[string]interface{} "Listing already reviewed"
// @Security Bearer
// @Router /api/reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid review payload")
		respondError(c, bindReviewError(err))
		return
	}

	review, err := h.service.CreateReview(c.Request.Context(), principal.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"review":  review,
	})
}

// ListReviews handles GET /api/reviews
// @Summary List reviews
// @Description List reviews for a listing, or the caller's own when my=true
// @Tags Reviews
// @Produce json
// @Param listingType query string false "FLIGHT | HOTEL | CAR"
// @Param listingId query string false "Listing id"
// @Param my query bool false "Only the caller's reviews (requires auth)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{} "my=true without a token"
// @Router /api/reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	var query models.ReviewListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, models.ErrMalformedBody.WithCause(err))
		return
	}

	var userID *uuid.UUID
	if principal, ok := middleware.GetPrincipal(c); ok {
		userID = &principal.UserID
	}

	reviews, total, err := h.service.ListReviews(c.Request.Context(), &query, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"total":   total,
	})
}

// Distribution handles GET /api/reviews/distribution
// @Summary Review rating distribution
// @Description Return the star histogram and average rating for one listing
// @Tags Reviews
// @Produce json
// @Param listingType query string true "FLIGHT | HOTEL | CAR"
// @Param listingId query string true "Listing id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Missing or bad listing"
// @Router /api/reviews/distribution [get]
func (h *ReviewHandler) Distribution(c *gin.Context) {
	distribution, err := h.service.Distribution(c.Request.Context(), c.Query("listingType"), c.Query("listingId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"distribution": distribution,
	})
}

// bindReviewError keeps the rating-specific error code for payloads where
// the rating is not an integer, which JSON decoding rejects before the
// service ever sees the value.
func bindReviewError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "rating" {
		return models.ErrInvalidRating
	}
	return models.ErrMalformedBody.WithCause(err)
}
