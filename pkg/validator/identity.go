package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyIdentityID indicates the identity id is empty
	ErrEmptyIdentityID = errors.New("identity id cannot be empty")

	// ErrInvalidIdentityID indicates the identity id does not match NNN-NN-NNNN
	ErrInvalidIdentityID = errors.New("identity id must match the format NNN-NN-NNNN")
)

// identityIDRegex matches the NNN-NN-NNNN identity id format
var identityIDRegex = regexp.MustCompile(`^[0-9]{3}-[0-9]{2}-[0-9]{4}$`)

// IdentityValidator validates user identity ids
type IdentityValidator struct{}

// NewIdentityValidator creates a new identity validator instance
func NewIdentityValidator() *IdentityValidator {
	return &IdentityValidator{}
}

// Validate checks an identity id against the NNN-NN-NNNN format.
// Returns the trimmed id and an error if invalid.
func (v *IdentityValidator) Validate(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", ErrEmptyIdentityID
	}
	if !identityIDRegex.MatchString(trimmed) {
		return "", ErrInvalidIdentityID
	}
	return trimmed, nil
}

// IsValid is a convenience method that returns true if the id is valid
func (v *IdentityValidator) IsValid(id string) bool {
	_, err := v.Validate(id)
	return err == nil
}
