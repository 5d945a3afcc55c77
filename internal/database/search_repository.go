package database

import (
	"fmt"
	"strings"

	"github.com/tripstack/travel-backend/internal/models"
)

// SearchRepository handles the public catalog searches. All three searches
// share the same contract: dynamic filters, a deterministic id tie-break on
// every sort, and a total count over the same WHERE clause.
type SearchRepository struct {
	db DB
}

// NewSearchRepository creates a new search repository
func NewSearchRepository(db DB) *SearchRepository {
	return &SearchRepository{
		db: db,
	}
}

// SearchFlights returns active flights matching the filters plus the total
// match count. Origin and destination are resolved through the airports
// table so results carry IATA codes and cities for display.
func (r *SearchRepository) SearchFlights(params models.FlightSearchParams) ([]models.FlightSearchResult, int, error) {
	conditions := []string{"f.is_active = true"}
	args := []interface{}{}
	argCount := 1

	conditions = append(conditions, fmt.Sprintf("LOWER(o.iata_code) = LOWER($%d)", argCount))
	args = append(args, strings.TrimSpace(params.OriginIata))
	argCount++

	conditions = append(conditions, fmt.Sprintf("LOWER(d.iata_code) = LOWER($%d)", argCount))
	args = append(args, strings.TrimSpace(params.DestinationIata))
	argCount++

	// Departure date is a UTC day window
	conditions = append(conditions, fmt.Sprintf("f.departure_time >= $%d", argCount))
	args = append(args, params.DepartureDate)
	argCount++

	conditions = append(conditions, fmt.Sprintf("f.departure_time < $%d", argCount))
	args = append(args, params.DepartureDate.AddDate(0, 0, 1))
	argCount++

	conditions = append(conditions, fmt.Sprintf("f.seats_available >= $%d", argCount))
	args = append(args, params.Passengers)
	argCount++

	if params.PriceMax > 0 {
		conditions = append(conditions, fmt.Sprintf("f.base_price <= $%d", argCount))
		args = append(args, params.PriceMax)
		argCount++
	}

	switch params.Stops {
	case "0":
		conditions = append(conditions, fmt.Sprintf("f.stops = $%d", argCount))
		args = append(args, 0)
		argCount++
	case "1":
		conditions = append(conditions, fmt.Sprintf("f.stops = $%d", argCount))
		args = append(args, 1)
		argCount++
	case "2":
		conditions = append(conditions, "f.stops >= 2")
	}

	where := strings.Join(conditions, " AND ")

	sortColumn := "f.base_price"
	if params.SortBy == "duration" {
		sortColumn = "f.total_duration_minutes"
	}

	fromClause := `
		FROM flights f
		INNER JOIN airports o ON o.id = f.origin_airport_id
		INNER JOIN airports d ON d.id = f.destination_airport_id
	`

	var total int
	countQuery := `SELECT COUNT(*)` + fromClause + `WHERE ` + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count flights: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT f.id, f.airline, f.flight_number, f.origin_airport_id,
		       f.destination_airport_id, f.departure_time, f.arrival_time,
		       f.cabin_class, f.base_price, f.currency, f.seats_available,
		       f.stops, f.total_duration_minutes, f.is_active,
		       f.created_at, f.updated_at,
		       o.iata_code AS origin_iata,
		       o.city AS origin_city,
		       d.iata_code AS destination_iata,
		       d.city AS destination_city
		%s
		WHERE %s
		ORDER BY %s %s, f.id ASC
		LIMIT $%d OFFSET $%d
	`, fromClause, where, sortColumn, sortDirection(params.SortOrder), argCount, argCount+1)

	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	var flights []models.FlightSearchResult
	if err := r.db.Select(&flights, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search flights: %w", err)
	}

	return flights, total, nil
}

// SearchHotels returns active hotels in the city plus the total match count.
// City matching is exact but case-insensitive; guests is not a capacity
// filter because hotels carry no room-count column.
func (r *SearchRepository) SearchHotels(params models.HotelSearchParams) ([]models.Hotel, int, error) {
	conditions := []string{"is_active = true"}
	args := []interface{}{}
	argCount := 1

	conditions = append(conditions, fmt.Sprintf("LOWER(city) = LOWER($%d)", argCount))
	args = append(args, strings.TrimSpace(params.City))
	argCount++

	if params.MinStars > 0 {
		conditions = append(conditions, fmt.Sprintf("star_rating >= $%d", argCount))
		args = append(args, params.MinStars)
		argCount++
	}

	if params.PriceMax > 0 {
		conditions = append(conditions, fmt.Sprintf("base_price_per_night <= $%d", argCount))
		args = append(args, params.PriceMax)
		argCount++
	}

	where := strings.Join(conditions, " AND ")

	sortColumn := "base_price_per_night"
	if params.SortBy == "starRating" {
		sortColumn = "star_rating"
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM hotels WHERE ` + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count hotels: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, city, state, star_rating, base_price_per_night,
		       currency, is_active, created_at, updated_at
		FROM hotels
		WHERE %s
		ORDER BY %s %s, id ASC
		LIMIT $%d OFFSET $%d
	`, where, sortColumn, sortDirection(params.SortOrder), argCount, argCount+1)

	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	var hotels []models.Hotel
	if err := r.db.Select(&hotels, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search hotels: %w", err)
	}

	return hotels, total, nil
}

// SearchCars returns active rental cars in the pickup city plus the total
// match count. Dropoff location is echoed by the service but not a filter.
func (r *SearchRepository) SearchCars(params models.CarSearchParams) ([]models.Car, int, error) {
	conditions := []string{"is_active = true"}
	args := []interface{}{}
	argCount := 1

	conditions = append(conditions, fmt.Sprintf("LOWER(pickup_city) = LOWER($%d)", argCount))
	args = append(args, strings.TrimSpace(params.PickupLocation))
	argCount++

	if params.CarType != "" {
		conditions = append(conditions, fmt.Sprintf("car_type = $%d", argCount))
		args = append(args, params.CarType)
		argCount++
	}

	if params.PriceMax > 0 {
		conditions = append(conditions, fmt.Sprintf("daily_price <= $%d", argCount))
		args = append(args, params.PriceMax)
		argCount++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM cars WHERE ` + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count cars: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, provider_name, make, model, car_type, seats, transmission,
		       pickup_city, daily_price, currency, is_active,
		       created_at, updated_at
		FROM cars
		WHERE %s
		ORDER BY daily_price %s, id ASC
		LIMIT $%d OFFSET $%d
	`, where, sortDirection(params.SortOrder), argCount, argCount+1)

	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	var cars []models.Car
	if err := r.db.Select(&cars, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search cars: %w", err)
	}

	return cars, total, nil
}

// sortDirection maps the wire value onto a SQL keyword, defaulting ascending
func sortDirection(order string) string {
	if order == models.SortOrderDesc {
		return "DESC"
	}
	return "ASC"
}
