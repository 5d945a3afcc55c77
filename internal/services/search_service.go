package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/database"
	"github.com/tripstack/travel-backend/internal/models"
)

// Paging defaults shared by the three search endpoints
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// SearchService handles business logic for the public catalog searches
type SearchService struct {
	repo   *database.SearchRepository
	logger *logrus.Logger
}

// NewSearchService creates a new search service
func NewSearchService(repo *database.SearchRepository, logger *logrus.Logger) *SearchService {
	return &SearchService{
		repo:   repo,
		logger: logger,
	}
}

// SearchFlights searches active flights for a UTC departure day
func (s *SearchService) SearchFlights(query *models.FlightSearchQuery) (*models.SearchPage, error) {
	params := models.FlightSearchParams{
		OriginIata:      strings.TrimSpace(query.OriginIata),
		DestinationIata: strings.TrimSpace(query.DestinationIata),
		PriceMax:        parsePriceMax(query.PriceMax),
		Stops:           parseStopsFilter(query.Stops),
		SortBy:          pickSortBy(query.SortBy, "price", "duration"),
		SortOrder:       pickSortOrder(query.SortOrder),
		Page:            parsePage(query.Page),
		PageSize:        parsePageSize(query.PageSize),
	}

	// 1. Required filters
	if params.OriginIata == "" {
		return nil, models.MissingField("originIata")
	}
	if params.DestinationIata == "" {
		return nil, models.MissingField("destinationIata")
	}

	departure, err := parseSearchDate(query.DepartureDate, "departureDate")
	if err != nil {
		return nil, err
	}
	params.DepartureDate = departure

	// 2. Optional return leg is stored with the booking later but never
	// filters the outbound list; it only has to form a valid window.
	if query.ReturnDate != "" {
		returnDate, err := parseSearchDate(query.ReturnDate, "returnDate")
		if err != nil {
			return nil, err
		}
		if !returnDate.After(departure) {
			return nil, models.ErrInvalidDateRange
		}
		params.ReturnDate = &returnDate
	}

	passengers, err := parsePassengers(query.Passengers)
	if err != nil {
		return nil, err
	}
	params.Passengers = passengers

	// 3. Query
	items, total, err := s.repo.SearchFlights(params)
	if err != nil {
		s.logger.WithError(err).Error("Flight search failed")
		return nil, models.Internal(err)
	}

	s.logger.WithFields(logrus.Fields{
		"origin":      params.OriginIata,
		"destination": params.DestinationIata,
		"date":        query.DepartureDate,
		"results":     len(items),
		"total":       total,
	}).Info("Flight search completed")

	return searchPage(items, total, params.Page, params.PageSize), nil
}

// SearchHotels searches active hotels in a city
func (s *SearchService) SearchHotels(query *models.HotelSearchQuery) (*models.SearchPage, error) {
	params := models.HotelSearchParams{
		City:      strings.TrimSpace(query.City),
		Guests:    parseCount(query.Guests),
		PriceMax:  parsePriceMax(query.PriceMax),
		MinStars:  parseCount(query.MinStars),
		SortBy:    pickSortBy(query.SortBy, "price", "starRating"),
		SortOrder: pickSortOrder(query.SortOrder),
		Page:      parsePage(query.Page),
		PageSize:  parsePageSize(query.PageSize),
	}

	if params.City == "" {
		return nil, models.MissingField("city")
	}

	checkIn, err := parseSearchDate(query.CheckInDate, "checkInDate")
	if err != nil {
		return nil, err
	}
	checkOut, err := parseSearchDate(query.CheckOutDate, "checkOutDate")
	if err != nil {
		return nil, err
	}
	if !checkOut.After(checkIn) {
		return nil, models.ErrInvalidDateRange
	}
	params.CheckInDate = checkIn
	params.CheckOutDate = checkOut

	items, total, err := s.repo.SearchHotels(params)
	if err != nil {
		s.logger.WithError(err).Error("Hotel search failed")
		return nil, models.Internal(err)
	}

	s.logger.WithFields(logrus.Fields{
		"city":    params.City,
		"results": len(items),
		"total":   total,
	}).Info("Hotel search completed")

	return searchPage(items, total, params.Page, params.PageSize), nil
}

// SearchCars searches active rental cars in a pickup city
func (s *SearchService) SearchCars(query *models.CarSearchQuery) (*models.SearchPage, error) {
	params := models.CarSearchParams{
		PickupLocation:  strings.TrimSpace(query.PickupLocation),
		DropoffLocation: strings.TrimSpace(query.DropoffLocation),
		PriceMax:        parsePriceMax(query.PriceMax),
		CarType:         strings.ToUpper(strings.TrimSpace(query.CarType)),
		SortBy:          "price",
		SortOrder:       pickSortOrder(query.SortOrder),
		Page:            parsePage(query.Page),
		PageSize:        parsePageSize(query.PageSize),
	}

	if params.PickupLocation == "" {
		return nil, models.MissingField("pickupLocation")
	}

	pickup, err := parseSearchDate(query.PickupDate, "pickupDate")
	if err != nil {
		return nil, err
	}
	dropoff, err := parseSearchDate(query.DropoffDate, "dropoffDate")
	if err != nil {
		return nil, err
	}
	if !dropoff.After(pickup) {
		return nil, models.ErrInvalidDateRange
	}
	params.PickupDate = pickup
	params.DropoffDate = dropoff

	if params.CarType != "" && !models.ValidCarType(params.CarType) {
		return nil, models.ErrInvalidCarType
	}

	items, total, err := s.repo.SearchCars(params)
	if err != nil {
		s.logger.WithError(err).Error("Car search failed")
		return nil, models.Internal(err)
	}

	s.logger.WithFields(logrus.Fields{
		"pickup":  params.PickupLocation,
		"results": len(items),
		"total":   total,
	}).Info("Car search completed")

	return searchPage(items, total, params.Page, params.PageSize), nil
}

func searchPage(items interface{}, total, page, pageSize int) *models.SearchPage {
	return &models.SearchPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}

// parseSearchDate parses a required YYYY-MM-DD query value as a UTC day
func parseSearchDate(raw, field string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, models.MissingField(field)
	}
	day, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, models.ErrInvalidDateRange.WithCause(err)
	}
	return day, nil
}

// parsePassengers defaults to one traveller; an explicit non-positive or
// unparseable count is rejected rather than silently corrected.
func parsePassengers(raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0, models.ErrInvalidSeatCount
	}
	return n, nil
}

// parsePage treats anything unparseable or below one as the first page
func parsePage(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// parsePageSize clamps the page size into [1, 100], defaulting to 20
func parsePageSize(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return defaultPageSize
	}
	if n < 1 {
		return 1
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}

// parsePriceMax returns zero (filter off) for absent or unusable values
func parsePriceMax(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f <= 0 {
		return 0
	}
	return f
}

// parseCount is for optional non-negative integers like guests or minStars
func parseCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseStopsFilter keeps only the three recognized stop buckets
func parseStopsFilter(raw string) string {
	switch strings.TrimSpace(raw) {
	case "0", "1", "2":
		return strings.TrimSpace(raw)
	default:
		return ""
	}
}

// pickSortBy falls back to the first allowed column
func pickSortBy(raw string, allowed ...string) string {
	raw = strings.TrimSpace(raw)
	for _, a := range allowed {
		if raw == a {
			return a
		}
	}
	return allowed[0]
}

// pickSortOrder defaults ascending
func pickSortOrder(raw string) string {
	if strings.TrimSpace(raw) == models.SortOrderDesc {
		return models.SortOrderDesc
	}
	return models.SortOrderAsc
}
