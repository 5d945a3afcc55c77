package models

import (
	"time"

	"github.com/google/uuid"
)

// Airport is a lookup row used to resolve IATA codes and to attribute
// flight revenue to a city.
type Airport struct {
	ID        uuid.UUID `json:"id" db:"id"`
	IataCode  string    `json:"iataCode" db:"iata_code"`
	Name      string    `json:"name" db:"name"`
	City      string    `json:"city" db:"city"`
	Country   string    `json:"country" db:"country"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Flight is an inventory row; seats_available is decremented inside the
// booking transaction and is never negative.
type Flight struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	Airline              string    `json:"airline" db:"airline"`
	FlightNumber         string    `json:"flightNumber" db:"flight_number"`
	OriginAirportID      uuid.UUID `json:"originAirportId" db:"origin_airport_id"`
	DestinationAirportID uuid.UUID `json:"destinationAirportId" db:"destination_airport_id"`
	DepartureTime        time.Time `json:"departureTime" db:"departure_time"`
	ArrivalTime          time.Time `json:"arrivalTime" db:"arrival_time"`
	CabinClass           string    `json:"cabinClass" db:"cabin_class"`
	BasePrice            float64   `json:"basePrice" db:"base_price"`
	Currency             string    `json:"currency" db:"currency"`
	SeatsAvailable       int       `json:"seatsAvailable" db:"seats_available"`
	Stops                int       `json:"stops" db:"stops"`
	TotalDurationMinutes int       `json:"totalDurationMinutes" db:"total_duration_minutes"`
	IsActive             bool      `json:"isActive" db:"is_active"`
	CreatedAt            time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time `json:"updatedAt" db:"updated_at"`
}
