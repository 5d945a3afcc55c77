package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tripstack/travel-backend/internal/models"
)

// InventoryRepository serves the booking engine's locked reads and the
// conditional seat decrement. Every method runs on the caller's transaction;
// none opens its own.
type InventoryRepository struct{}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{}
}

// SetLockTimeout bounds how long the transaction waits for row locks.
// SET LOCAL resets automatically at commit or rollback.
func (r *InventoryRepository) SetLockTimeout(ctx context.Context, tx *sqlx.Tx, timeoutMs int64) error {
	if timeoutMs <= 0 {
		return fmt.Errorf("lock timeout must be positive, got %d", timeoutMs)
	}

	_, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeoutMs))
	if err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}

	return nil
}

// FindFlightForUpdate loads an active flight with a row lock, serializing
// concurrent bookers of the same flight until the transaction ends.
func (r *InventoryRepository) FindFlightForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Flight, error) {
	var flight models.Flight

	query := `
		SELECT id, airline, flight_number, origin_airport_id, destination_airport_id,
		       departure_time, arrival_time, cabin_class, base_price, currency,
		       seats_available, stops, total_duration_minutes, is_active,
		       created_at, updated_at
		FROM flights
		WHERE id = $1 AND is_active = true
		FOR UPDATE
	`

	err := tx.GetContext(ctx, &flight, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrFlightNotFound
		}
		return nil, fmt.Errorf("failed to lock flight: %w", err)
	}

	return &flight, nil
}

// FindHotelForUpdate loads an active hotel with a row lock. Hotels carry no
// capacity column, so the lock only serializes concurrent bookings.
func (r *InventoryRepository) FindHotelForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Hotel, error) {
	var hotel models.Hotel

	query := `
		SELECT id, name, city, state, star_rating, base_price_per_night,
		       currency, is_active, created_at, updated_at
		FROM hotels
		WHERE id = $1 AND is_active = true
		FOR UPDATE
	`

	err := tx.GetContext(ctx, &hotel, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrHotelNotFound
		}
		return nil, fmt.Errorf("failed to lock hotel: %w", err)
	}

	return &hotel, nil
}

// FindCarForUpdate loads an active rental car with a row lock
func (r *InventoryRepository) FindCarForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*models.Car, error) {
	var car models.Car

	query := `
		SELECT id, provider_name, make, model, car_type, seats, transmission,
		       pickup_city, daily_price, currency, is_active,
		       created_at, updated_at
		FROM cars
		WHERE id = $1 AND is_active = true
		FOR UPDATE
	`

	err := tx.GetContext(ctx, &car, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrCarNotFound
		}
		return nil, fmt.Errorf("failed to lock car: %w", err)
	}

	return &car, nil
}

// DecrementFlightSeats takes seats off a flight, guarded so availability
// never goes negative. Zero rows affected means not enough seats remain.
func (r *InventoryRepository) DecrementFlightSeats(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, seats int) error {
	query := `
		UPDATE flights
		SET seats_available = seats_available - $2,
		    updated_at = NOW()
		WHERE id = $1
		  AND seats_available >= $2
	`

	result, err := tx.ExecContext(ctx, query, id, seats)
	if err != nil {
		return fmt.Errorf("failed to decrement flight seats: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNoInventory
	}

	return nil
}
