package models

import (
	"time"

	"github.com/google/uuid"
)

// Hotel is a catalog row. Hotels carry no room-count column, so hotel
// bookings lock the row for serialization but never decrement inventory.
type Hotel struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	City              string    `json:"city" db:"city"`
	State             string    `json:"state" db:"state"`
	StarRating        int       `json:"starRating" db:"star_rating"`
	BasePricePerNight float64   `json:"basePricePerNight" db:"base_price_per_night"`
	Currency          string    `json:"currency" db:"currency"`
	IsActive          bool      `json:"isActive" db:"is_active"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}
