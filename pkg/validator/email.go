package validator

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	// ErrEmptyEmail indicates the email address is empty
	ErrEmptyEmail = errors.New("email cannot be empty")

	// ErrInvalidEmail indicates the email address is not parseable
	ErrInvalidEmail = errors.New("email address is not valid")
)

// EmailValidator validates and normalizes email addresses
type EmailValidator struct{}

// NewEmailValidator creates a new email validator instance
func NewEmailValidator() *EmailValidator {
	return &EmailValidator{}
}

// Validate checks an email address and returns it lowercased and trimmed.
// Lookups always run against the normalized form.
func (v *EmailValidator) Validate(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrEmptyEmail
	}
	addr, err := mail.ParseAddress(normalized)
	if err != nil || addr.Address != normalized {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// IsValid is a convenience method that returns true if the email is valid
func (v *EmailValidator) IsValid(email string) bool {
	_, err := v.Validate(email)
	return err == nil
}
