package models

import (
	"time"

	"github.com/google/uuid"
)

// Billing transaction statuses
const (
	BillingStatusSuccess = "SUCCESS"
	BillingStatusFailed  = "FAILED"
)

// Payment methods
const (
	PaymentMethodCard = "CARD"
)

// BillingTransaction records one charge attempt against the payment
// provider. It is only ever inserted inside the booking transaction, so a
// committed row always has its parent booking.
type BillingTransaction struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	BookingID         uuid.UUID  `json:"bookingId" db:"booking_id"`
	UserID            uuid.UUID  `json:"userId" db:"user_id"`
	Amount            float64    `json:"amount" db:"amount"`
	Currency          string     `json:"currency" db:"currency"`
	PaymentMethod     string     `json:"paymentMethod" db:"payment_method"`
	PaymentToken      string     `json:"-" db:"payment_token"`
	ProviderReference NullString `json:"providerReference" db:"provider_reference"`
	Status            string     `json:"status" db:"status"`
	ErrorCode         NullString `json:"errorCode" db:"error_code"`
	RawResponse       JSONMap    `json:"rawResponse" db:"raw_response"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
}
