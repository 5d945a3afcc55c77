package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailValidate_ValidAddresses(t *testing.T) {
	validator := NewEmailValidator()

	validEmails := []struct {
		input    string
		expected string
		name     string
	}{
		{"user@example.com", "user@example.com", "Simple address"},
		{"USER@EXAMPLE.COM", "user@example.com", "Uppercase lowered"},
		{"  user@example.com  ", "user@example.com", "Surrounding whitespace"},
		{"first.last+tag@sub.example.co", "first.last+tag@sub.example.co", "Dots and plus tag"},
	}

	for _, tc := range validEmails {
		t.Run(tc.name, func(t *testing.T) {
			email, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, email)
		})
	}
}

func TestEmailValidate_InvalidAddresses(t *testing.T) {
	validator := NewEmailValidator()

	invalidEmails := []struct {
		input string
		name  string
	}{
		{"", "Empty string"},
		{"not-an-email", "No at sign"},
		{"@example.com", "Missing local part"},
		{"user@", "Missing domain"},
		{"user @example.com", "Embedded space"},
		{"Surname, Name <user@example.com>", "Display name form"},
	}

	for _, tc := range invalidEmails {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			assert.Error(t, err)
		})
	}
}
