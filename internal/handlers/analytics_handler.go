package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/services"
)

// AnalyticsHandler handles the admin-only revenue and clickstream reports
type AnalyticsHandler struct {
	service *services.AnalyticsService
	logger  *logrus.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service *services.AnalyticsService, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
		logger:  logger,
	}
}

// TopProperties handles GET /api/admin/analytics/revenue/properties
// @Summary Top listings by revenue
// @Description Rank listings by confirmed revenue within one calendar year
// @Tags Admin Analytics
// @Produce json
// @Param year query int false "Calendar year (default current)"
// @Param limit query int false "Rows to return (default 10, max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Year out of range"
// @Security Bearer
// @Router /api/admin/analytics/revenue/properties [get]
func (h *AnalyticsHandler) TopProperties(c *gin.Context) {
	year, properties, err := h.service.TopPropertiesByRevenue(c.Query("year"), c.Query("limit"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"year":       year,
		"properties": properties,
	})
}

// RevenueByCity handles GET /api/admin/analytics/revenue/city
// @Summary Revenue by city
// @Description Sum confirmed hotel, car and flight revenue per city for one calendar year
// @Tags Admin Analytics
// @Produce json
// @Param year query int false "Calendar year (default current)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Year out of range"
// @Security Bearer
// @Router /api/admin/analytics/revenue/city [get]
func (h *AnalyticsHandler) RevenueByCity(c *gin.Context) {
	year, cities, err := h.service.CityRevenueForYear(c.Query("year"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"year":    year,
		"cities":  cities,
	})
}

// TopProviders handles GET /api/admin/analytics/providers/top
// @Summary Top providers by revenue
// @Description Rank airlines, hotels and rental companies by confirmed revenue within one month
// @Tags Admin Analytics
// @Produce json
// @Param year query int false "Calendar year (default current)"
// @Param month query int false "Month 1-12 (default current)"
// @Param limit query int false "Rows to return (default 10, max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Year or month out of range"
// @Security Bearer
// @Router /api/admin/analytics/providers/top [get]
func (h *AnalyticsHandler) TopProviders(c *gin.Context) {
	year, month, providers, err := h.service.TopProvidersForMonth(c.Query("year"), c.Query("month"), c.Query("limit"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"year":      year,
		"month":     month,
		"providers": providers,
	})
}

// PageClicks handles GET /api/admin/analytics/clicks/pages
// @Summary Click counts by page
// @Description Count recent events grouped by page and event type
// @Tags Admin Analytics
// @Produce json
// @Param sinceDays query int false "Window in days (default 30)"
// @Param limit query int false "Rows to return (default 100, max 500)"
// @Success 200 {object} map[string]interface{}
// @Security Bearer
// @Router /api/admin/analytics/clicks/pages [get]
func (h *AnalyticsHandler) PageClicks(c *gin.Context) {
	pages, err := h.service.PageClickStats(c.Request.Context(), c.Query("sinceDays"), c.Query("limit"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"pages":   pages,
	})
}

// ListingClicks handles GET /api/admin/analytics/clicks/listings
// @Summary Click counts by listing
// @Description Count recent events grouped by the listing they touched
// @Tags Admin Analytics
// @Produce json
// @Param sinceDays query int false "Window in days (default 30)"
// @Param limit query int false "Rows to return (default 100, max 500)"
// @Success 200 {object} map[string]interface{}
// @Security Bearer
// @Router /api/admin/analytics/clicks/listings [get]
func (h *AnalyticsHandler) ListingClicks(c *gin.Context) {
	listings, err := h.service.ListingClickStats(c.Request.Context(), c.Query("sinceDays"), c.Query("limit"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"listings": listings,
	})
}

// UserTrace handles GET /api/admin/analytics/users/:userId/trace
// @Summary Trace one user's sessions
// @Description Rebuild a user's page walks grouped by session
// @Tags Admin Analytics
// @Produce json
// @Param userId path string true "User ID"
// @Param limitEvents query int false "Events to read (default 500, max 2000)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Unknown user"
// @Security Bearer
// @Router /api/admin/analytics/users/{userId}/trace [get]
func (h *AnalyticsHandler) UserTrace(c *gin.Context) {
	trace, err := h.service.UserTrace(c.Request.Context(), c.Param("userId"), c.Query("limitEvents"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"trace":   trace,
	})
}

// CohortTrace handles GET /api/admin/analytics/cohort/trace
// @Summary Trace a city cohort
// @Description Find the page walks users registered in one city share most often
// @Tags Admin Analytics
// @Produce json
// @Param city query string true "Registration city"
// @Param limitUsers query int false "Users to sample (default 50, max 500)"
// @Param limitEvents query int false "Events to read (default 500, max 2000)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Missing city"
// @Security Bearer
// @Router /api/admin/analytics/cohort/trace [get]
func (h *AnalyticsHandler) CohortTrace(c *gin.Context) {
	trace, err := h.service.CohortTraceByCity(c.Request.Context(), c.Query("city"), c.Query("limitUsers"), c.Query("limitEvents"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"trace":   trace,
	})
}
