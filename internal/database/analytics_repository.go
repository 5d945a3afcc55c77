package database

import (
	"fmt"
	"time"

	"github.com/tripstack/travel-backend/internal/models"
)

// AnalyticsRepository runs the relational aggregations behind the admin
// revenue reports. Every query takes an explicit [start, end) window so the
// service layer owns calendar arithmetic.
type AnalyticsRepository struct {
	db DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db DB) *AnalyticsRepository {
	return &AnalyticsRepository{
		db: db,
	}
}

// TopPropertiesByRevenue ranks listings by confirmed revenue inside the
// window. Listing names are synthesized per kind: hotel name, airline plus
// flight number, car provider plus make and model.
func (r *AnalyticsRepository) TopPropertiesByRevenue(start, end time.Time, limit int) ([]models.PropertyRevenue, error) {
	query := `
		SELECT 'HOTEL' AS listing_type,
		       h.id::text AS listing_id,
		       h.name AS listing_name,
		       COUNT(*) AS bookings,
		       SUM(bi.total_price) AS total_revenue,
		       bi.currency
		FROM booking_items bi
		INNER JOIN bookings b ON b.id = bi.booking_id
		INNER JOIN hotels h ON h.id = bi.hotel_id
		WHERE b.status = 'CONFIRMED'
		  AND bi.item_type = 'HOTEL'
		  AND b.created_at >= $1 AND b.created_at < $2
		GROUP BY h.id, h.name, bi.currency

		UNION ALL

		SELECT 'FLIGHT' AS listing_type,
		       f.id::text AS listing_id,
		       f.airline || ' ' || f.flight_number AS listing_name,
		       COUNT(*) AS bookings,
		       SUM(bi.total_price) AS total_revenue,
		       bi.currency
		FROM booking_items bi
		INNER JOIN bookings b ON b.id = bi.booking_id
		INNER JOIN flights f ON f.id = bi.flight_id
		WHERE b.status = 'CONFIRMED'
		  AND bi.item_type = 'FLIGHT'
		  AND b.created_at >= $1 AND b.created_at < $2
		GROUP BY f.id, f.airline, f.flight_number, bi.currency

		UNION ALL

		SELECT 'CAR' AS listing_type,
		       c.id::text AS listing_id,
		       c.provider_name || ' ' || c.make || ' ' || c.model AS listing_name,
		       COUNT(*) AS bookings,
		       SUM(bi.total_price) AS total_revenue,
		       bi.currency
		FROM booking_items bi
		INNER JOIN bookings b ON b.id = bi.booking_id
		INNER JOIN cars c ON c.id = bi.car_id
		WHERE b.status = 'CONFIRMED'
		  AND bi.item_type = 'CAR'
		  AND b.created_at >= $1 AND b.created_at < $2
		GROUP BY c.id, c.provider_name, c.make, c.model, bi.currency

		ORDER BY total_revenue DESC
		LIMIT $3
	`

	var rows []models.PropertyRevenue
	if err := r.db.Select(&rows, query, start, end, limit); err != nil {
		return nil, fmt.Errorf("failed to rank properties by revenue: %w", err)
	}

	return rows, nil
}

// HotelRevenueByCity sums confirmed hotel revenue per hotel city
func (r *AnalyticsRepository) HotelRevenueByCity(start, end time.Time) ([]models.CityRevenue, error) {
	query := `
		SELECT h.city AS city,
		       SUM(bi.total_price) AS total_revenue,
		       COUNT(*) AS bookings
		FROM booking_items bi
		INNER JOIN bookings b ON b.id = bi.booking_id
		INNER JOIN hotels h ON h.id = bi.hotel_id
		WHERE b.status = 'CONFIRMED'
		  AND bi.item_type = 'HOTEL'
		  AND b.created_at >= $1 AND b.created_at < $2
		GROUP BY h.city
	`

	var rows []models.CityRevenue
	if err := r.db.Select(&rows, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to aggregate hotel revenue by city: %w", err)
	}

	return rows, nil
}

// CarRevenueByCity sums confirmed car-rental revenue per pickup city
func (r *AnalyticsRepository) CarRevenueByCity(start, end time.Time) ([]models.CityRevenue, error) {
	query := `
		SELECT c.pickup_city AS city,
		       SUM(bi.total_price) AS total_revenue,
		       COUNT(*) AS bookings
		FROM booking_items bi
		INNER JOIN bookings b ON b.id = bi.booking_id
		INNER JOIN cars c ON c.id = bi.car_id
		WHERE b.status = 'CONFIRMED'
		  AND bi.item_type = 'CAR'
		  AND b.created_at >= $1 AND b.created_at < $2
		GROUP BY c.pickup_city
	`

	var rows []models.CityRevenue
	if err := r.db.Select(&rows, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to aggregate car revenue by city: %w", err)
	}

	return rows, nil
}

// FlightRevenueByCity sums confirmed flight revenue per origin-airport city
func (r *AnalyticsRepository) FlightRevenueByCity(start, end time.Time) ([]models.CityRevenue, error) {
	query := `
		SELECT o.city AS city,
		       SUM(bi.total_price) AS total_revenue,
		       COUNT(*) AS bookings
		FROM booking_items bi
		INNER JOIN bookings b ON b.id = bi.booking_id
		INNER JOIN flights f ON f.id = bi.flight_id
		INNER JOIN airports o ON o.id = f.origin_airport_id
		WHERE b.status = 'CONFIRMED'
		  AND bi.item_type = 'FLIGHT'
		  AND b.created_at >= $1 AND b.created_at < $2
		GROUP BY o.city
	`

	var rows []models.CityRevenue
	if err := r.db.Select(&rows, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to aggregate flight revenue by city: %w", err)
	}

	return rows, nil
}

// TopProviders ranks sellers by confirmed revenue inside the window:
// airlines for flights, hotel names for stays, rental companies for cars.
func (r *AnalyticsRepository) TopProviders(start, end time.Time, limit int) ([]models.ProviderStat, error) {
	query := `
		SELECT f.airline AS provider,
		       'FLIGHT' AS item_type,
		       COUNT(*) AS bookings,
		       SUM(bi.total_price) AS total_revenue
		FROM booking_items bi
		INNER JOIN bookings b ON b.id = bi.booking_id
		INNER JOIN flights f ON f.id = bi.flight_id
		WHERE b.status = 'CONFIRMED'
		  AND bi.item_type = 'FLIGHT'
		  AND b.created_at >= $1 AND b.created_at < $2
		GROUP BY f.airline

		UNION ALL

		SELECT h.name AS provider,
		       'HOTEL' AS item_type,
		       COUNT(*) AS bookings,
		       SUM(bi.total_price) AS total_revenue
		FROM booking_items bi
		INNER JOIN bookings b ON b.id = bi.booking_id
		INNER JOIN hotels h ON h.id = bi.hotel_id
		WHERE b.status = 'CONFIRMED'
		  AND bi.item_type = 'HOTEL'
		  AND b.created_at >= $1 AND b.created_at < $2
		GROUP BY h.name

		UNION ALL

		SELECT c.provider_name AS provider,
		       'CAR' AS item_type,
		       COUNT(*) AS bookings,
		       SUM(bi.total_price) AS total_revenue
		FROM booking_items bi
		INNER JOIN bookings b ON b.id = bi.booking_id
		INNER JOIN cars c ON c.id = bi.car_id
		WHERE b.status = 'CONFIRMED'
		  AND bi.item_type = 'CAR'
		  AND b.created_at >= $1 AND b.created_at < $2
		GROUP BY c.provider_name

		ORDER BY total_revenue DESC
		LIMIT $3
	`

	var rows []models.ProviderStat
	if err := r.db.Select(&rows, query, start, end, limit); err != nil {
		return nil, fmt.Errorf("failed to rank providers: %w", err)
	}

	return rows, nil
}
