package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/config"
	"github.com/tripstack/travel-backend/internal/database"
	"github.com/tripstack/travel-backend/internal/events"
	"github.com/tripstack/travel-backend/internal/models"
)

// dateLayout is the wire format for day-precision date fields
const dateLayout = "2006-01-02"

// priceTolerance is the relative drift allowed between the client's
// expectedTotalPrice hint and the recomputed total before the booking
// fails with price_mismatch.
const priceTolerance = 0.01

// BookingOutcome is the committed result of a successful booking.
type BookingOutcome struct {
	Booking *models.Booking            `json:"booking"`
	Items   []models.BookingItem       `json:"items"`
	Billing *models.BillingTransaction `json:"billing"`
}

// BookingService runs the synchronous booking pipeline: lock the inventory
// row, price it, insert the booking, charge, and commit. Events are
// published only after the transaction has decided the outcome.
type BookingService struct {
	db        database.DB
	inventory *database.InventoryRepository
	bookings  *database.BookingRepository
	payments  *PaymentSimulator
	publisher events.Publisher
	config    config.BookingConfig
	logger    *logrus.Logger
}

// NewBookingService creates the booking engine
func NewBookingService(
	db database.DB,
	inventory *database.InventoryRepository,
	bookings *database.BookingRepository,
	payments *PaymentSimulator,
	publisher events.Publisher,
	cfg config.BookingConfig,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		db:        db,
		inventory: inventory,
		bookings:  bookings,
		payments:  payments,
		publisher: publisher,
		config:    cfg,
		logger:    logger,
	}
}

// BookFlight books seats on one flight
func (s *BookingService) BookFlight(ctx context.Context, userID uuid.UUID, req *models.FlightBookingRequest) (*BookingOutcome, error) {
	if req.PaymentMethodToken == "" {
		return nil, models.ErrMissingPaymentMethod
	}
	if req.Seats < 1 {
		return nil, models.ErrInvalidSeatCount
	}
	flightID, err := uuid.Parse(req.FlightID)
	if err != nil {
		return nil, models.ErrFlightNotFound
	}

	order := bookingOrder{
		ListingID:     flightID,
		Quantity:      req.Seats,
		PaymentToken:  req.PaymentMethodToken,
		ExpectedTotal: req.ExpectedTotalPrice,
		Notes:         req.Notes,
	}

	return s.book(ctx, userID, flightKind{repo: s.inventory}, order)
}

// BookHotel books rooms for a stay window
func (s *BookingService) BookHotel(ctx context.Context, userID uuid.UUID, req *models.HotelBookingRequest) (*BookingOutcome, error) {
	if req.PaymentMethodToken == "" {
		return nil, models.ErrMissingPaymentMethod
	}
	rooms := req.Rooms
	if rooms == 0 {
		rooms = 1
	}
	if rooms < 1 {
		return nil, models.ErrInvalidSeatCount
	}
	hotelID, err := uuid.Parse(req.HotelID)
	if err != nil {
		return nil, models.ErrHotelNotFound
	}
	checkIn, checkOut, err := parseDayWindow(req.CheckInDate, req.CheckOutDate, "checkInDate", "checkOutDate")
	if err != nil {
		return nil, err
	}

	order := bookingOrder{
		ListingID:     hotelID,
		Quantity:      rooms,
		Guests:        req.Guests,
		StartDate:     checkIn,
		EndDate:       checkOut,
		PaymentToken:  req.PaymentMethodToken,
		ExpectedTotal: req.ExpectedTotalPrice,
		Notes:         req.Notes,
	}

	return s.book(ctx, userID, hotelKind{repo: s.inventory}, order)
}

// BookCar books a rental car for a pickup/dropoff window
func (s *BookingService) BookCar(ctx context.Context, userID uuid.UUID, req *models.CarBookingRequest) (*BookingOutcome, error) {
	if req.PaymentMethodToken == "" {
		return nil, models.ErrMissingPaymentMethod
	}
	carID, err := uuid.Parse(req.CarID)
	if err != nil {
		return nil, models.ErrCarNotFound
	}
	pickup, dropoff, err := parseDayWindow(req.PickupDate, req.DropoffDate, "pickupDate", "dropoffDate")
	if err != nil {
		return nil, err
	}

	order := bookingOrder{
		ListingID:     carID,
		Quantity:      1,
		StartDate:     pickup,
		EndDate:       dropoff,
		PaymentToken:  req.PaymentMethodToken,
		ExpectedTotal: req.ExpectedTotalPrice,
		Notes:         req.Notes,
	}

	return s.book(ctx, userID, carKind{repo: s.inventory}, order)
}

// ListBookings returns the user's bookings with items attached, filtered by
// scope (past, current, future, all).
func (s *BookingService) ListBookings(userID uuid.UUID, scope string) ([]models.BookingWithItems, error) {
	return s.bookings.ListByUser(userID, scope)
}

// GetBooking loads one booking with its items and billing history. Callers
// other than the owner or an admin get booking_not_found, never a hint that
// the booking exists.
func (s *BookingService) GetBooking(bookingID, requesterID uuid.UUID, isAdmin bool) (*models.BookingWithItems, []models.BillingTransaction, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if booking == nil {
		return nil, nil, models.ErrBookingNotFound
	}
	if booking.UserID != requesterID && !isAdmin {
		return nil, nil, models.ErrBookingNotFound
	}

	billing, err := s.bookings.ListBillingForBooking(bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get billing transactions: %w", err)
	}

	return booking, billing, nil
}

// book runs one booking attempt, retrying the whole transaction exactly
// once on deadlock, then publishes the outcome.
func (s *BookingService) book(ctx context.Context, userID uuid.UUID, kind inventoryKind, order bookingOrder) (*BookingOutcome, error) {
	if order.ExpectedTotal < 0 {
		return nil, models.ErrInvalidPrice
	}

	outcome, attempted, err := s.bookOnce(ctx, userID, kind, order)
	if err != nil && database.IsDeadlock(err) {
		s.logger.WithFields(logrus.Fields{
			"user_id":   userID,
			"item_type": kind.itemType(),
		}).Warn("Booking transaction deadlocked, retrying once")
		outcome, attempted, err = s.bookOnce(ctx, userID, kind, order)
	}

	if err != nil {
		if database.IsLockTimeout(err) {
			s.logger.WithFields(logrus.Fields{
				"user_id":   userID,
				"item_type": kind.itemType(),
			}).Warn("Gave up waiting for the inventory row lock")
		}
		appErr, ok := models.AsAppError(err)
		if !ok {
			appErr = models.Internal(err)
		}
		if attempted != nil {
			attempted.Status = models.BookingStatusFailed
		}
		s.publisher.PublishBookingFailed(ctx, events.NewBookingFailed(userID, attempted, appErr.Code))
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":    userID,
			"item_type":  kind.itemType(),
			"error_code": appErr.Code,
		}).Warn("Booking failed")
		return nil, appErr
	}

	s.publisher.PublishBookingConfirmed(ctx, events.NewBookingConfirmed(outcome.Booking, outcome.Items, outcome.Billing))
	s.logger.WithFields(logrus.Fields{
		"booking_id":   outcome.Booking.ID,
		"user_id":      userID,
		"item_type":    kind.itemType(),
		"total_amount": outcome.Booking.TotalAmount,
	}).Info("Booking confirmed")

	return outcome, nil
}

// bookOnce is one pass of the transactional skeleton. attempted is the
// in-memory booking header when one was built before the failure; the row
// itself is gone after rollback, so the failure event is its only trace.
func (s *BookingService) bookOnce(ctx context.Context, userID uuid.UUID, kind inventoryKind, order bookingOrder) (outcome *BookingOutcome, attempted *models.Booking, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin booking transaction: %w", err)
	}
	// No-op once Commit has succeeded
	defer tx.Rollback()

	if err := s.inventory.SetLockTimeout(ctx, tx, s.config.InventoryLockTimeout.Milliseconds()); err != nil {
		return nil, nil, err
	}

	// 1-3. Lock, verify, price
	line, err := kind.lockAndLoad(ctx, tx, order)
	if err != nil {
		return nil, nil, err
	}
	totalAmount := line.total()

	// The client hint is never authoritative; beyond 1% drift the client
	// must refresh.
	if order.ExpectedTotal > 0 && relativeDiff(totalAmount, order.ExpectedTotal) > priceTolerance {
		return nil, nil, models.ErrPriceMismatch
	}

	// 4. Booking header, PENDING
	booking := &models.Booking{
		ID:          uuid.New(),
		UserID:      userID,
		Status:      models.BookingStatusPending,
		TotalAmount: totalAmount,
		Currency:    line.Currency,
		StartDate:   line.StartDate,
		EndDate:     line.EndDate,
		Notes:       models.NewNullString(order.Notes),
	}
	if err := s.bookings.CreateBooking(ctx, tx, booking); err != nil {
		return nil, nil, err
	}

	// 5. Item
	item := kind.buildItem(booking.ID, order, line)
	if err := s.bookings.CreateBookingItem(ctx, tx, item); err != nil {
		return nil, booking, err
	}

	// 6. Decrement before charging, so an approved charge means the
	// capacity is already reserved under the lock.
	if err := kind.decrement(ctx, tx, order); err != nil {
		return nil, booking, err
	}

	// 7. Charge the simulator
	charge := s.payments.Charge(ChargeRequest{
		UserID:   userID,
		Amount:   totalAmount,
		Currency: line.Currency,
		Token:    order.PaymentToken,
	})

	// 8. Billing row records the attempt either way
	billing := &models.BillingTransaction{
		ID:            uuid.New(),
		BookingID:     booking.ID,
		UserID:        userID,
		Amount:        totalAmount,
		Currency:      line.Currency,
		PaymentMethod: models.PaymentMethodCard,
		PaymentToken:  order.PaymentToken,
		RawResponse:   models.JSONMap(charge.RawResponse),
	}
	if charge.Success {
		billing.Status = models.BillingStatusSuccess
		billing.ProviderReference = models.NewNullString(charge.ProviderRef)
	} else {
		billing.Status = models.BillingStatusFailed
		billing.ErrorCode = models.NewNullString(charge.ErrorType)
	}
	if err := s.bookings.CreateBillingTransaction(ctx, tx, billing); err != nil {
		return nil, booking, err
	}

	// 9. Terminal status. A declined charge flips FAILED and then aborts,
	// so the rollback discards the billing row too; the emitted event is
	// the only failure trace.
	if !charge.Success {
		if err := s.bookings.UpdateBookingStatus(ctx, tx, booking.ID, models.BookingStatusFailed); err != nil {
			return nil, booking, err
		}
		booking.Status = models.BookingStatusFailed
		return nil, booking, paymentError(charge.ErrorType)
	}

	if err := s.bookings.UpdateBookingStatus(ctx, tx, booking.ID, models.BookingStatusConfirmed); err != nil {
		return nil, booking, err
	}
	booking.Status = models.BookingStatusConfirmed

	if err := tx.Commit(); err != nil {
		return nil, booking, fmt.Errorf("failed to commit booking transaction: %w", err)
	}

	return &BookingOutcome{
		Booking: booking,
		Items:   []models.BookingItem{*item},
		Billing: billing,
	}, booking, nil
}

// paymentError maps a simulator outcome to the caller-facing error. Card
// declines and network errors both surface as payment_failed; the billing
// row keeps the precise cause.
func paymentError(errorType string) *models.AppError {
	if errorType == PaymentErrorInvalidAmount {
		return models.ErrInvalidAmount
	}
	return models.ErrPaymentFailed
}

// relativeDiff measures drift against the recomputed, authoritative total
func relativeDiff(actual, expected float64) float64 {
	return math.Abs(actual-expected) / actual
}

// parseDayWindow parses two YYYY-MM-DD fields and requires from < to.
// Strings that do not parse cannot form a valid range and report
// invalid_date_range.
func parseDayWindow(fromRaw, toRaw, fromField, toField string) (time.Time, time.Time, error) {
	if fromRaw == "" {
		return time.Time{}, time.Time{}, models.MissingField(fromField)
	}
	if toRaw == "" {
		return time.Time{}, time.Time{}, models.MissingField(toField)
	}

	from, err := time.Parse(dateLayout, fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, models.ErrInvalidDateRange.WithCause(err)
	}
	to, err := time.Parse(dateLayout, toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, models.ErrInvalidDateRange.WithCause(err)
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, models.ErrInvalidDateRange
	}

	return from, to, nil
}
