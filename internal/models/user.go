package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents a registered account. The password verifier never leaves
// the server; identity id and email are unique.
type User struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	IdentityID      string     `json:"identityId" db:"identity_id"`
	Email           string     `json:"email" db:"email"`
	PasswordHash    string     `json:"-" db:"password_hash"`
	Role            string     `json:"role" db:"role"`
	FirstName       string     `json:"firstName" db:"first_name"`
	LastName        string     `json:"lastName" db:"last_name"`
	Phone           NullString `json:"phone" db:"phone"`
	AddressLine1    NullString `json:"addressLine1" db:"address_line1"`
	City            NullString `json:"city" db:"city"`
	State           string     `json:"state" db:"state"`
	ZipCode         string     `json:"zipCode" db:"zip_code"`
	ProfileImageURL NullString `json:"profileImageUrl" db:"profile_image_url"`
	IsActive        bool       `json:"isActive" db:"is_active"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user carries the ADMIN role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RegisterRequest is the payload for POST /api/users
type RegisterRequest struct {
	IdentityID      string `json:"identityId"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Phone           string `json:"phone"`
	AddressLine1    string `json:"addressLine1"`
	City            string `json:"city"`
	State           string `json:"state"`
	ZipCode         string `json:"zipCode"`
	ProfileImageURL string `json:"profileImageUrl"`
}

// LoginRequest is the payload for POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the payload for PATCH /api/users/:id.
// Email, identity id, role and active flag are immutable through this path.
type UpdateProfileRequest struct {
	FirstName       *string `json:"firstName"`
	LastName        *string `json:"lastName"`
	Phone           *string `json:"phone"`
	AddressLine1    *string `json:"addressLine1"`
	City            *string `json:"city"`
	State           *string `json:"state"`
	ZipCode         *string `json:"zipCode"`
	ProfileImageURL *string `json:"profileImageUrl"`
}
