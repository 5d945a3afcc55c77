package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tripstack/travel-backend/internal/database"
	"github.com/tripstack/travel-backend/internal/models"
)

// bookingOrder is the kind-independent, pre-validated input to the engine.
// For flights the dates are zero and come from the locked row instead.
type bookingOrder struct {
	ListingID     uuid.UUID
	Quantity      int
	Guests        int
	StartDate     time.Time
	EndDate       time.Time
	PaymentToken  string
	ExpectedTotal float64
	Notes         string
}

// pricedLine is a locked listing reduced to the numbers the engine books.
type pricedLine struct {
	UnitPrice float64
	Quantity  int
	Currency  string
	StartDate time.Time
	EndDate   time.Time
	Metadata  models.JSONMap
}

func (l *pricedLine) total() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// inventoryKind abstracts what differs between flight, hotel and car
// bookings so one engine code path serves all three. lockAndLoad takes the
// FOR UPDATE lock, verifies the listing can satisfy the order and prices
// it; decrement consumes capacity where a capacity column exists.
type inventoryKind interface {
	itemType() string
	lockAndLoad(ctx context.Context, tx *sqlx.Tx, order bookingOrder) (*pricedLine, error)
	decrement(ctx context.Context, tx *sqlx.Tx, order bookingOrder) error
	buildItem(bookingID uuid.UUID, order bookingOrder, line *pricedLine) *models.BookingItem
}

type flightKind struct {
	repo *database.InventoryRepository
}

func (k flightKind) itemType() string { return models.ItemTypeFlight }

func (k flightKind) lockAndLoad(ctx context.Context, tx *sqlx.Tx, order bookingOrder) (*pricedLine, error) {
	flight, err := k.repo.FindFlightForUpdate(ctx, tx, order.ListingID)
	if err != nil {
		return nil, err
	}
	// Fast check under the lock; the conditional decrement is the
	// authoritative guard.
	if flight.SeatsAvailable < order.Quantity {
		return nil, models.ErrNoInventory
	}

	return &pricedLine{
		UnitPrice: flight.BasePrice,
		Quantity:  order.Quantity,
		Currency:  flight.Currency,
		StartDate: flight.DepartureTime,
		EndDate:   flight.ArrivalTime,
		Metadata: models.JSONMap{
			"airline":      flight.Airline,
			"flightNumber": flight.FlightNumber,
			"cabinClass":   flight.CabinClass,
		},
	}, nil
}

func (k flightKind) decrement(ctx context.Context, tx *sqlx.Tx, order bookingOrder) error {
	return k.repo.DecrementFlightSeats(ctx, tx, order.ListingID, order.Quantity)
}

func (k flightKind) buildItem(bookingID uuid.UUID, order bookingOrder, line *pricedLine) *models.BookingItem {
	item := newBookingItem(bookingID, models.ItemTypeFlight, order, line)
	item.FlightID = uuid.NullUUID{UUID: order.ListingID, Valid: true}
	return item
}

type hotelKind struct {
	repo *database.InventoryRepository
}

func (k hotelKind) itemType() string { return models.ItemTypeHotel }

func (k hotelKind) lockAndLoad(ctx context.Context, tx *sqlx.Tx, order bookingOrder) (*pricedLine, error) {
	hotel, err := k.repo.FindHotelForUpdate(ctx, tx, order.ListingID)
	if err != nil {
		return nil, err
	}

	nights := daySpan(order.StartDate, order.EndDate)
	metadata := models.JSONMap{
		"hotelName": hotel.Name,
		"city":      hotel.City,
		"nights":    nights,
	}
	if order.Guests > 0 {
		metadata["guests"] = order.Guests
	}

	return &pricedLine{
		UnitPrice: hotel.BasePricePerNight * float64(nights),
		Quantity:  order.Quantity,
		Currency:  hotel.Currency,
		StartDate: order.StartDate,
		EndDate:   order.EndDate,
		Metadata:  metadata,
	}, nil
}

// Hotels carry no room-count column; the row lock is the only
// serialization and there is nothing to decrement.
func (k hotelKind) decrement(ctx context.Context, tx *sqlx.Tx, order bookingOrder) error {
	return nil
}

func (k hotelKind) buildItem(bookingID uuid.UUID, order bookingOrder, line *pricedLine) *models.BookingItem {
	item := newBookingItem(bookingID, models.ItemTypeHotel, order, line)
	item.HotelID = uuid.NullUUID{UUID: order.ListingID, Valid: true}
	return item
}

type carKind struct {
	repo *database.InventoryRepository
}

func (k carKind) itemType() string { return models.ItemTypeCar }

func (k carKind) lockAndLoad(ctx context.Context, tx *sqlx.Tx, order bookingOrder) (*pricedLine, error) {
	car, err := k.repo.FindCarForUpdate(ctx, tx, order.ListingID)
	if err != nil {
		return nil, err
	}

	days := daySpan(order.StartDate, order.EndDate)

	return &pricedLine{
		UnitPrice: car.DailyPrice,
		Quantity:  days,
		Currency:  car.Currency,
		StartDate: order.StartDate,
		EndDate:   order.EndDate,
		Metadata: models.JSONMap{
			"providerName": car.ProviderName,
			"make":         car.Make,
			"model":        car.Model,
			"carType":      car.CarType,
			"days":         days,
		},
	}, nil
}

// Cars, like hotels, have no per-unit capacity column.
func (k carKind) decrement(ctx context.Context, tx *sqlx.Tx, order bookingOrder) error {
	return nil
}

func (k carKind) buildItem(bookingID uuid.UUID, order bookingOrder, line *pricedLine) *models.BookingItem {
	item := newBookingItem(bookingID, models.ItemTypeCar, order, line)
	item.CarID = uuid.NullUUID{UUID: order.ListingID, Valid: true}
	return item
}

func newBookingItem(bookingID uuid.UUID, itemType string, order bookingOrder, line *pricedLine) *models.BookingItem {
	return &models.BookingItem{
		ID:         uuid.New(),
		BookingID:  bookingID,
		ItemType:   itemType,
		StartDate:  line.StartDate,
		EndDate:    line.EndDate,
		Quantity:   line.Quantity,
		UnitPrice:  line.UnitPrice,
		TotalPrice: line.total(),
		Currency:   line.Currency,
		Metadata:   line.Metadata,
	}
}

// daySpan counts 24h periods between from and to, rounding partial periods
// up and never returning less than one. Day-precision inputs parsed at
// midnight UTC make this exact nights/days.
func daySpan(from, to time.Time) int {
	d := to.Sub(from)
	if d <= 0 {
		return 1
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
