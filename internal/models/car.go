package models

import (
	"time"

	"github.com/google/uuid"
)

// Car types
const (
	CarTypeEconomy = "ECONOMY"
	CarTypeCompact = "COMPACT"
	CarTypeSUV     = "SUV"
	CarTypeLuxury  = "LUXURY"
)

// ValidCarType reports whether t is one of the recognized car classes
func ValidCarType(t string) bool {
	switch t {
	case CarTypeEconomy, CarTypeCompact, CarTypeSUV, CarTypeLuxury:
		return true
	default:
		return false
	}
}

// Car is a rental-car catalog row, priced per day.
type Car struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ProviderName string    `json:"providerName" db:"provider_name"`
	Make         string    `json:"make" db:"make"`
	Model        string    `json:"model" db:"model"`
	CarType      string    `json:"carType" db:"car_type"`
	Seats        int       `json:"seats" db:"seats"`
	Transmission string    `json:"transmission" db:"transmission"`
	PickupCity   string    `json:"pickupCity" db:"pickup_city"`
	DailyPrice   float64   `json:"dailyPrice" db:"daily_price"`
	Currency     string    `json:"currency" db:"currency"`
	IsActive     bool      `json:"isActive" db:"is_active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
