package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking statuses. A booking is created PENDING and makes exactly one
// terminal transition, never backward. CANCELED exists for admin tooling
// and has no write path in the booking engine.
const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusFailed    = "FAILED"
	BookingStatusCanceled  = "CANCELED"
)

// Booking item types
const (
	ItemTypeFlight = "FLIGHT"
	ItemTypeHotel  = "HOTEL"
	ItemTypeCar    = "CAR"
)

// ValidListingType reports whether t names a bookable listing kind
func ValidListingType(t string) bool {
	switch t {
	case ItemTypeFlight, ItemTypeHotel, ItemTypeCar:
		return true
	default:
		return false
	}
}

// Booking is the header row grouping the items of a single purchase.
type Booking struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"userId" db:"user_id"`
	Status      string     `json:"status" db:"status"`
	TotalAmount float64    `json:"totalAmount" db:"total_amount"`
	Currency    string     `json:"currency" db:"currency"`
	StartDate   time.Time  `json:"startDate" db:"start_date"`
	EndDate     time.Time  `json:"endDate" db:"end_date"`
	Notes       NullString `json:"notes" db:"notes"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
}

// BookingItem is one reserved unit: flight seats, hotel rooms for a stay,
// or car rental days. Exactly one of the three listing ids is set, matching
// ItemType, and TotalPrice = UnitPrice * Quantity.
type BookingItem struct {
	ID         uuid.UUID     `json:"id" db:"id"`
	BookingID  uuid.UUID     `json:"bookingId" db:"booking_id"`
	ItemType   string        `json:"itemType" db:"item_type"`
	FlightID   uuid.NullUUID `json:"flightId" db:"flight_id"`
	HotelID    uuid.NullUUID `json:"hotelId" db:"hotel_id"`
	CarID      uuid.NullUUID `json:"carId" db:"car_id"`
	StartDate  time.Time     `json:"startDate" db:"start_date"`
	EndDate    time.Time     `json:"endDate" db:"end_date"`
	Quantity   int           `json:"quantity" db:"quantity"`
	UnitPrice  float64       `json:"unitPrice" db:"unit_price"`
	TotalPrice float64       `json:"totalPrice" db:"total_price"`
	Currency   string        `json:"currency" db:"currency"`
	Metadata   JSONMap       `json:"metadata" db:"metadata"`
	CreatedAt  time.Time     `json:"createdAt" db:"created_at"`
}

// ListingID returns whichever listing id is set for the item's type
func (i *BookingItem) ListingID() uuid.UUID {
	switch i.ItemType {
	case ItemTypeFlight:
		return i.FlightID.UUID
	case ItemTypeHotel:
		return i.HotelID.UUID
	case ItemTypeCar:
		return i.CarID.UUID
	}
	return uuid.Nil
}

// BookingWithItems is the read-side shape for booking listings.
type BookingWithItems struct {
	Booking
	Items []BookingItem `json:"items"`
}

// Booking list scopes partition by end_date versus now.
const (
	BookingScopePast    = "past"
	BookingScopeCurrent = "current"
	BookingScopeFuture  = "future"
	BookingScopeAll     = "all"
)

// FlightBookingRequest is the payload for POST /api/bookings/flight
type FlightBookingRequest struct {
	FlightID           string  `json:"flightId"`
	Seats              int     `json:"seats"`
	PaymentMethodToken string  `json:"paymentMethodToken"`
	ExpectedTotalPrice float64 `json:"expectedTotalPrice"`
	Notes              string  `json:"notes"`
}

// HotelBookingRequest is the payload for POST /api/bookings/hotel
type HotelBookingRequest struct {
	HotelID            string  `json:"hotelId"`
	CheckInDate        string  `json:"checkInDate"`
	CheckOutDate       string  `json:"checkOutDate"`
	Rooms              int     `json:"rooms"`
	Guests             int     `json:"guests"`
	PaymentMethodToken string  `json:"paymentMethodToken"`
	ExpectedTotalPrice float64 `json:"expectedTotalPrice"`
	Notes              string  `json:"notes"`
}

// CarBookingRequest is the payload for POST /api/bookings/car
type CarBookingRequest struct {
	CarID              string  `json:"carId"`
	PickupDate         string  `json:"pickupDate"`
	DropoffDate        string  `json:"dropoffDate"`
	PaymentMethodToken string  `json:"paymentMethodToken"`
	ExpectedTotalPrice float64 `json:"expectedTotalPrice"`
	Notes              string  `json:"notes"`
}
