package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/middleware"
	"github.com/tripstack/travel-backend/internal/models"
	"github.com/tripstack/travel-backend/internal/services"
	"github.com/tripstack/travel-backend/internal/utils"
)

// ClickstreamHandler handles event tracking and session reads
type ClickstreamHandler struct {
	service *services.ClickstreamService
	logger  *logrus.Logger
}

// NewClickstreamHandler creates a new clickstream handler
func NewClickstreamHandler(service *services.ClickstreamService, logger *logrus.Logger) *ClickstreamHandler {
	return &ClickstreamHandler{
		service: service,
		logger:  logger,
	}
}

// Track handles POST /api/analytics/track
// @Summary Track one event
// @Description Accept a clickstream event for asynchronous ingest
// @Tags Analytics
// @Accept json
// @Produce json
// @Param event body models.TrackEventRequest true "Event payload"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Unknown event type or missing page"
// @Router /api/analytics/track [post]
func (h *ClickstreamHandler) Track(c *gin.Context) {
	var req models.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, models.ErrMalformedBody.WithCause(err))
		return
	}

	event, err := h.service.Track(&req, clientContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success":   true,
		"sessionId": event.SessionID,
	})
}

// TrackBatch handles POST /api/analytics/track/batch
// @Summary Track a batch of events
// @Description Accept up to 100 clickstream events in one request
// @Tags Analytics
// @Accept json
// @Produce json
// @Param events body []models.TrackEventRequest true "Event payloads"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Batch too large"
// @Router /api/analytics/track/batch [post]
func (h *ClickstreamHandler) TrackBatch(c *gin.Context) {
	var reqs []models.TrackEventRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		respondError(c, models.ErrMalformedBody.WithCause(err))
		return
	}

	accepted, err := h.service.TrackBatch(reqs, clientContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success":  true,
		"accepted": accepted,
	})
}

// Session handles GET /api/analytics/session/:sessionId
// @Summary Session activity
// @Description Return the events and page walk of one session, visible to the session owner and to admins
// @Tags Analytics
// @Produce json
// @Param sessionId path string true "Session id"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Session belongs to someone else"
// @Security Bearer
// @Router /api/analytics/session/{sessionId} [get]
func (h *ClickstreamHandler) Session(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	stats, err := h.service.Session(c.Request.Context(), c.Param("sessionId"), principal.UserID, principal.IsAdmin())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": stats,
	})
}

// clientContext collects the request-scoped fields the ingest enriches
// events with. Tracking works with or without a token, so the principal
// is optional here.
func clientContext(c *gin.Context) services.ClientContext {
	client := services.ClientContext{
		IP:        utils.ClientIP(c),
		UserAgent: utils.UserAgent(c),
	}
	if principal, ok := middleware.GetPrincipal(c); ok {
		userID := principal.UserID
		client.UserID = &userID
	}
	return client
}
