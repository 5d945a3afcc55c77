package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/models"
	"github.com/tripstack/travel-backend/internal/services"
)

// SearchHandler handles flight, hotel and car search requests
type SearchHandler struct {
	service *services.SearchService
	logger  *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(service *services.SearchService, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		service: service,
		logger:  logger,
	}
}

// SearchFlights handles GET /api/search/flights
// @Summary Search flights
// @Description Filter, sort and page the flight inventory
// @Tags Search
// @Produce json
// @Param originIata query string false "Origin airport IATA code"
// @Param destinationIata query string false "Destination airport IATA code"
// @Param departureDate query string false "Departure date (YYYY-MM-DD)"
// @Param returnDate query string false "Return date (YYYY-MM-DD)"
// @Param passengers query int false "Seats needed (default 1)"
// @Param priceMax query number false "Maximum price per seat"
// @Param stops query int false "Maximum stops"
// @Param sortBy query string false "price | duration | departure"
// @Param sortOrder query string false "asc | desc"
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 20, max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Bad filter value"
// @Router /api/search/flights [get]
func (h *SearchHandler) SearchFlights(c *gin.Context) {
	var query models.FlightSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, models.ErrMalformedBody.WithCause(err))
		return
	}

	page, err := h.service.SearchFlights(&query)
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, page)
}

// SearchHotels handles GET /api/search/hotels
// @Summary Search hotels
// @Description Filter, sort and page the hotel inventory
// @Tags Search
// @Produce json
// @Param city query string false "City name (case-insensitive)"
// @Param checkInDate query string false "Check-in date (YYYY-MM-DD)"
// @Param checkOutDate query string false "Check-out date (YYYY-MM-DD)"
// @Param guests query int false "Guest count"
// @Param priceMax query number false "Maximum nightly price"
// @Param minStars query int false "Minimum star rating"
// @Param sortBy query string false "price | stars | rating"
// @Param sortOrder query string false "asc | desc"
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 20, max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Bad filter value"
// @Router /api/search/hotels [get]
func (h *SearchHandler) SearchHotels(c *gin.Context) {
	var query models.HotelSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, models.ErrMalformedBody.WithCause(err))
		return
	}

	page, err := h.service.SearchHotels(&query)
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, page)
}

// SearchCars handles GET /api/search/cars
// @Summary Search rental cars
// @Description Filter, sort and page the rental car inventory
// @Tags Search
// @Produce json
// @Param pickupLocation query string false "Pickup city"
// @Param dropoffLocation query string false "Dropoff city"
// @Param pickupDate query string false "Pickup date (YYYY-MM-DD)"
// @Param dropoffDate query string false "Dropoff date (YYYY-MM-DD)"
// @Param priceMax query number false "Maximum daily price"
// @Param carType query string false "ECONOMY | COMPACT | SUV | LUXURY | VAN"
// @Param sortBy query string false "price | rating"
// @Param sortOrder query string false "asc | desc"
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 20, max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Bad filter value"
// @Router /api/search/cars [get]
func (h *SearchHandler) SearchCars(c *gin.Context) {
	var query models.CarSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, models.ErrMalformedBody.WithCause(err))
		return
	}

	page, err := h.service.SearchCars(&query)
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, page)
}

// respondPage flattens a result page into the standard success envelope.
func respondPage(c *gin.Context, page *models.SearchPage) {
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"items":    page.Items,
		"total":    page.Total,
		"page":     page.Page,
		"pageSize": page.PageSize,
	})
}
