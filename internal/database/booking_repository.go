package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/tripstack/travel-backend/internal/models"
)

// BookingRepository handles booking, booking item and billing rows. The
// write methods all take the engine's transaction; reads run on the pool.
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{
		db: db,
	}
}

// CreateBooking inserts the PENDING header row and reads back the
// database-assigned timestamps.
func (r *BookingRepository) CreateBooking(ctx context.Context, tx *sqlx.Tx, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, user_id, status, total_amount, currency,
			start_date, end_date, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRowxContext(
		ctx,
		query,
		booking.ID,
		booking.UserID,
		booking.Status,
		booking.TotalAmount,
		booking.Currency,
		booking.StartDate,
		booking.EndDate,
		booking.Notes,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// CreateBookingItem inserts one reserved unit under the booking header
func (r *BookingRepository) CreateBookingItem(ctx context.Context, tx *sqlx.Tx, item *models.BookingItem) error {
	item.CreatedAt = time.Now()

	query := `
		INSERT INTO booking_items (
			id, booking_id, item_type, flight_id, hotel_id, car_id,
			start_date, end_date, quantity, unit_price, total_price,
			currency, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		item.ID,
		item.BookingID,
		item.ItemType,
		item.FlightID,
		item.HotelID,
		item.CarID,
		item.StartDate,
		item.EndDate,
		item.Quantity,
		item.UnitPrice,
		item.TotalPrice,
		item.Currency,
		item.Metadata,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking item: %w", err)
	}

	return nil
}

// UpdateBookingStatus flips the header to its terminal status
func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, tx *sqlx.Tx, bookingID uuid.UUID, status string) error {
	query := `
		UPDATE bookings
		SET status = $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := tx.ExecContext(ctx, query, bookingID, status)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrBookingNotFound
	}

	return nil
}

// CreateBillingTransaction records the charge attempt under the same
// transaction as the booking it bills.
func (r *BookingRepository) CreateBillingTransaction(ctx context.Context, tx *sqlx.Tx, bt *models.BillingTransaction) error {
	bt.CreatedAt = time.Now()

	query := `
		INSERT INTO billing_transactions (
			id, booking_id, user_id, amount, currency, payment_method,
			payment_token, provider_reference, status, error_code,
			raw_response, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := tx.ExecContext(
		ctx,
		query,
		bt.ID,
		bt.BookingID,
		bt.UserID,
		bt.Amount,
		bt.Currency,
		bt.PaymentMethod,
		bt.PaymentToken,
		bt.ProviderReference,
		bt.Status,
		bt.ErrorCode,
		bt.RawResponse,
		bt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create billing transaction: %w", err)
	}

	return nil
}

// GetByID loads a booking header with its items, or nil when absent
func (r *BookingRepository) GetByID(id uuid.UUID) (*models.BookingWithItems, error) {
	var booking models.Booking

	query := `
		SELECT id, user_id, status, total_amount, currency,
		       start_date, end_date, notes, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	err := r.db.Get(&booking, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Booking not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	items, err := r.itemsForBookings([]uuid.UUID{id})
	if err != nil {
		return nil, err
	}

	return &models.BookingWithItems{
		Booking: booking,
		Items:   items[id],
	}, nil
}

// ListBillingForBooking returns the charge attempts of one booking,
// oldest first.
func (r *BookingRepository) ListBillingForBooking(bookingID uuid.UUID) ([]models.BillingTransaction, error) {
	var transactions []models.BillingTransaction

	query := `
		SELECT id, booking_id, user_id, amount, currency, payment_method,
		       payment_token, provider_reference, status, error_code,
		       raw_response, created_at
		FROM billing_transactions
		WHERE booking_id = $1
		ORDER BY created_at ASC
	`

	err := r.db.Select(&transactions, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list billing transactions: %w", err)
	}

	return transactions, nil
}

// ListByUser returns the user's bookings, newest first, partitioned by the
// scope's date window. Unrecognized scopes fall back to all.
func (r *BookingRepository) ListByUser(userID uuid.UUID, scope string) ([]models.BookingWithItems, error) {
	query := `
		SELECT id, user_id, status, total_amount, currency,
		       start_date, end_date, notes, created_at, updated_at
		FROM bookings
		WHERE user_id = $1
	`

	switch scope {
	case models.BookingScopePast:
		query += ` AND end_date < NOW()`
	case models.BookingScopeCurrent:
		query += ` AND start_date <= NOW() AND end_date >= NOW()`
	case models.BookingScopeFuture:
		query += ` AND start_date > NOW()`
	}

	query += ` ORDER BY created_at DESC`

	var headers []models.Booking
	if err := r.db.Select(&headers, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	if len(headers) == 0 {
		return []models.BookingWithItems{}, nil
	}

	ids := make([]uuid.UUID, 0, len(headers))
	for _, b := range headers {
		ids = append(ids, b.ID)
	}

	itemsByBooking, err := r.itemsForBookings(ids)
	if err != nil {
		return nil, err
	}

	bookings := make([]models.BookingWithItems, 0, len(headers))
	for _, b := range headers {
		bookings = append(bookings, models.BookingWithItems{
			Booking: b,
			Items:   itemsByBooking[b.ID],
		})
	}

	return bookings, nil
}

// itemsForBookings batch-loads items for a set of booking ids
func (r *BookingRepository) itemsForBookings(ids []uuid.UUID) (map[uuid.UUID][]models.BookingItem, error) {
	var items []models.BookingItem

	query := `
		SELECT id, booking_id, item_type, flight_id, hotel_id, car_id,
		       start_date, end_date, quantity, unit_price, total_price,
		       currency, metadata, created_at
		FROM booking_items
		WHERE booking_id = ANY($1)
		ORDER BY created_at ASC
	`

	if err := r.db.Select(&items, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to load booking items: %w", err)
	}

	grouped := make(map[uuid.UUID][]models.BookingItem, len(ids))
	for _, item := range items {
		grouped[item.BookingID] = append(grouped[item.BookingID], item)
	}

	return grouped, nil
}
