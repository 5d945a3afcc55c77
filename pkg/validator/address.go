package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyState indicates the state code is empty
	ErrEmptyState = errors.New("state cannot be empty")

	// ErrInvalidState indicates the state is not a US state code
	ErrInvalidState = errors.New("state must be a 2-letter US state code")

	// ErrEmptyZip indicates the zip code is empty
	ErrEmptyZip = errors.New("zip code cannot be empty")

	// ErrInvalidZip indicates the zip code is not NNNNN or NNNNN-NNNN
	ErrInvalidZip = errors.New("zip code must be 5 digits, optionally followed by -NNNN")
)

// usStates is the 50-entry US state set (no territories or DC)
var usStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true,
	"CO": true, "CT": true, "DE": true, "FL": true, "GA": true,
	"HI": true, "ID": true, "IL": true, "IN": true, "IA": true,
	"KS": true, "KY": true, "LA": true, "ME": true, "MD": true,
	"MA": true, "MI": true, "MN": true, "MS": true, "MO": true,
	"MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true,
	"OK": true, "OR": true, "PA": true, "RI": true, "SC": true,
	"SD": true, "TN": true, "TX": true, "UT": true, "VT": true,
	"VA": true, "WA": true, "WI": true, "WV": true, "WY": true,
}

// zipRegex matches 5-digit and ZIP+4 codes
var zipRegex = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// AddressValidator validates postal address fields
type AddressValidator struct{}

// NewAddressValidator creates a new address validator instance
func NewAddressValidator() *AddressValidator {
	return &AddressValidator{}
}

// ValidateState checks a 2-letter US state code, case-insensitively.
// Returns the uppercased code and an error if invalid.
func (v *AddressValidator) ValidateState(state string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(state))
	if trimmed == "" {
		return "", ErrEmptyState
	}
	if !usStates[trimmed] {
		return "", ErrInvalidState
	}
	return trimmed, nil
}

// ValidateZip checks a 5-digit or ZIP+4 code.
// Returns the trimmed code and an error if invalid.
func (v *AddressValidator) ValidateZip(zip string) (string, error) {
	trimmed := strings.TrimSpace(zip)
	if trimmed == "" {
		return "", ErrEmptyZip
	}
	if !zipRegex.MatchString(trimmed) {
		return "", ErrInvalidZip
	}
	return trimmed, nil
}

// IsValidState returns true if state is a valid US state code
func (v *AddressValidator) IsValidState(state string) bool {
	_, err := v.ValidateState(state)
	return err == nil
}

// IsValidZip returns true if zip is a valid zip code
func (v *AddressValidator) IsValidZip(zip string) bool {
	_, err := v.ValidateZip(zip)
	return err == nil
}
