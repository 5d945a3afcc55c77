package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/middleware"
	"github.com/tripstack/travel-backend/internal/models"
	"github.com/tripstack/travel-backend/internal/services"
)

// BookingHandler handles booking creation and retrieval
type BookingHandler struct {
	service *services.BookingService
	logger  *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		logger:  logger,
	}
}

// BookFlight handles POST /api/bookings/flight
// @Summary Book a flight
// @Description Reserve seats on a flight and charge the caller
// @Tags Bookings
// @Accept json
// @Produce json
// @Param booking body models.FlightBookingRequest true "Booking payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Validation failure"
// @Failure 402 {object} map[string]interface{} "Payment declined"
// @Failure 409 {object} map[string]interface{} "Not enough seats or price changed"
// @Security Bearer
// @Router /api/bookings/flight [post]
func (h *BookingHandler) BookFlight(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	var req models.FlightBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid flight booking payload")
		respondError(c, models.ErrMalformedBody.WithCause(err))
		return
	}

	outcome, err := h.service.BookFlight(c.Request.Context(), principal.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondBooked(c, outcome)
}

// BookHotel handles POST /api/bookings/hotel
// @Summary Book a hotel stay
// @Description Reserve rooms for a date range and charge the caller
// @Tags Bookings
// @Accept json
// @Produce json
// @Param booking body models.HotelBookingRequest true "Booking payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Validation failure"
// @Failure 402 {object} map[string]interface{} "Payment declined"
// @Failure 409 {object} map[string]interface{} "No rooms left or price changed"
// @Security Bearer
// @Router /api/bookings/hotel [post]
func (h *BookingHandler) BookHotel(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	var req models.HotelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid hotel booking payload")
		respondError(c, models.ErrMalformedBody.WithCause(err))
		return
	}

	outcome, err := h.service.BookHotel(c.Request.Context(), principal.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondBooked(c, outcome)
}

// BookCar handles POST /api/bookings/car
// @Summary Book a rental car
// @Description Reserve a car for a date range and charge the caller
// @Tags Bookings
// @Accept json
// @Produce json
// @Param booking body models.CarBookingRequest true "Booking payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Validation failure"
// @Failure 402 {object} map[string]interface{} "Payment declined"
// @Failure 409 {object} map[string]interface{} "Car unavailable or price changed"
// @Security Bearer
// @Router /api/bookings/car [post]
func (h *BookingHandler) BookCar(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	var req models.CarBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid car booking payload")
		respondError(c, models.ErrMalformedBody.WithCause(err))
		return
	}

	outcome, err := h.service.BookCar(c.Request.Context(), principal.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondBooked(c, outcome)
}

// ListMyBookings handles GET /api/bookings and GET /api/bookings/my
// @Summary List the caller's bookings
// @Description Return the caller's bookings, optionally narrowed to past, current or future travel
// @Tags Bookings
// @Produce json
// @Param scope query string false "past | current | future | all (default all)"
// @Success 200 {object} map[string]interface{}
// @Security Bearer
// @Router /api/bookings [get]
func (h *BookingHandler) ListMyBookings(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	scope := c.DefaultQuery("scope", models.BookingScopeAll)

	bookings, err := h.service.ListBookings(principal.UserID, scope)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"scope":    scope,
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetBooking handles GET /api/bookings/:id
// @Summary Get one booking
// @Description Return a booking with its items and billing history, visible to its owner and to admins
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Unknown booking"
// @Security Bearer
// @Router /api/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, models.ErrBookingNotFound)
		return
	}

	booking, billing, err := h.service.GetBooking(bookingID, principal.UserID, principal.IsAdmin())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"booking": booking,
		"billing": billing,
	})
}

// respondBooked writes the standard 201 envelope for a fresh booking.
func respondBooked(c *gin.Context, outcome *services.BookingOutcome) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"booking": outcome.Booking,
		"items":   outcome.Items,
		"billing": outcome.Billing,
	})
}
