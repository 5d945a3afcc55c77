package models

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a domain failure carried as a value: a stable machine code,
// a human-readable message, and the HTTP status the router should emit.
type AppError struct {
	Code    string `json:"errorCode"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithCause returns a copy of the error carrying the underlying cause
func (e *AppError) WithCause(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// WithMessage returns a copy of the error with a more specific message
func (e *AppError) WithMessage(msg string) *AppError {
	clone := *e
	clone.Message = msg
	return &clone
}

// NewAppError builds a one-off AppError
func NewAppError(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// AsAppError extracts an *AppError from an error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given stable code
func IsCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// Input errors (400)
var (
	ErrMalformedBody      = &AppError{Code: "malformed_body", Message: "Request body could not be parsed", Status: http.StatusBadRequest}
	ErrInvalidUserID      = &AppError{Code: "invalid_user_id", Message: "Identity id must match NNN-NN-NNNN", Status: http.StatusBadRequest}
	ErrMalformedState     = &AppError{Code: "malformed_state", Message: "State must be a valid 2-letter US state code", Status: http.StatusBadRequest}
	ErrMalformedZip       = &AppError{Code: "malformed_zip", Message: "Zip code must be 5 digits, optionally followed by -NNNN", Status: http.StatusBadRequest}
	ErrInvalidEmail       = &AppError{Code: "invalid_email", Message: "Email address is not valid", Status: http.StatusBadRequest}
	ErrInvalidPassword    = &AppError{Code: "invalid_password", Message: "Password must be at least 8 characters", Status: http.StatusBadRequest}
	ErrInvalidRating      = &AppError{Code: "invalid_rating", Message: "Rating must be an integer between 1 and 5", Status: http.StatusBadRequest}
	ErrInvalidEventType   = &AppError{Code: "invalid_event_type", Message: "Event type is not recognized", Status: http.StatusBadRequest}
	ErrInvalidDateRange   = &AppError{Code: "invalid_date_range", Message: "End date must be after start date", Status: http.StatusBadRequest}
	ErrInvalidSeatCount   = &AppError{Code: "invalid_seat_count", Message: "Seat count must be a positive integer", Status: http.StatusBadRequest}
	ErrBatchTooLarge      = &AppError{Code: "batch_too_large", Message: "Batch may contain at most 100 events", Status: http.StatusBadRequest}
	ErrInvalidYear        = &AppError{Code: "invalid_year", Message: "Year is out of range", Status: http.StatusBadRequest}
	ErrInvalidMonth       = &AppError{Code: "invalid_month", Message: "Month must be between 1 and 12", Status: http.StatusBadRequest}
	ErrInvalidListingType = &AppError{Code: "invalid_listing_type", Message: "Listing type must be FLIGHT, HOTEL or CAR", Status: http.StatusBadRequest}
	ErrInvalidListingID   = &AppError{Code: "invalid_listing_id", Message: "Listing id is required", Status: http.StatusBadRequest}
	ErrInvalidCarType     = &AppError{Code: "invalid_car_type", Message: "Car type must be ECONOMY, COMPACT, SUV or LUXURY", Status: http.StatusBadRequest}
	ErrInvalidPrice       = &AppError{Code: "invalid_price", Message: "Price is not valid", Status: http.StatusBadRequest}
)

// MissingField reports a missing required query or body field; the field name
// is embedded in the stable code so callers can match on it.
func MissingField(field string) *AppError {
	return &AppError{
		Code:    "missing_" + field,
		Message: fmt.Sprintf("Required field %q is missing", field),
		Status:  http.StatusBadRequest,
	}
}

// Auth errors (401/403)
var (
	ErrTokenMissing       = &AppError{Code: "token_missing", Message: "Authorization token is required", Status: http.StatusUnauthorized}
	ErrTokenInvalid       = &AppError{Code: "token_invalid", Message: "Authorization token is not valid", Status: http.StatusUnauthorized}
	ErrTokenExpired       = &AppError{Code: "token_expired", Message: "Authorization token has expired", Status: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "invalid_credentials", Message: "Email or password is incorrect", Status: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "forbidden", Message: "Administrator access required", Status: http.StatusForbidden}
)

// Uniqueness conflicts (409)
var (
	ErrDuplicateEmail  = &AppError{Code: "duplicate_email", Message: "A user with this email already exists", Status: http.StatusConflict}
	ErrDuplicateUserID = &AppError{Code: "duplicate_user_id", Message: "A user with this identity id already exists", Status: http.StatusConflict}
	ErrDuplicateReview = &AppError{Code: "duplicate_review", Message: "You have already reviewed this listing", Status: http.StatusConflict}
)

// Domain errors
var (
	ErrFlightNotFound       = &AppError{Code: "flight_not_found", Message: "Flight not found", Status: http.StatusNotFound}
	ErrHotelNotFound        = &AppError{Code: "hotel_not_found", Message: "Hotel not found", Status: http.StatusNotFound}
	ErrCarNotFound          = &AppError{Code: "car_not_found", Message: "Car not found", Status: http.StatusNotFound}
	ErrUserNotFound         = &AppError{Code: "user_not_found", Message: "User not found", Status: http.StatusNotFound}
	ErrBookingNotFound      = &AppError{Code: "booking_not_found", Message: "Booking not found", Status: http.StatusNotFound}
	ErrNoInventory          = &AppError{Code: "no_inventory", Message: "Not enough inventory available", Status: http.StatusConflict}
	ErrPriceMismatch        = &AppError{Code: "price_mismatch", Message: "Listed price has changed, please refresh and retry", Status: http.StatusConflict}
	ErrPaymentFailed        = &AppError{Code: "payment_failed", Message: "Payment was declined", Status: http.StatusPaymentRequired}
	ErrMissingPaymentMethod = &AppError{Code: "missing_payment_method", Message: "A payment method token is required", Status: http.StatusPaymentRequired}
	ErrInvalidAmount        = &AppError{Code: "invalid_amount", Message: "Charge amount must be positive", Status: http.StatusPaymentRequired}
)

// Infrastructure errors
var (
	ErrInternal     = &AppError{Code: "internal_error", Message: "An internal error occurred", Status: http.StatusInternalServerError}
	ErrNetworkError = &AppError{Code: "network_error", Message: "Upstream network error", Status: http.StatusBadGateway}
)

// Internal wraps an unexpected error as internal_error, keeping the cause
// for logs while hiding it from clients.
func Internal(err error) *AppError {
	return ErrInternal.WithCause(err)
}
