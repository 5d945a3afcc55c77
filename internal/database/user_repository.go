package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tripstack/travel-backend/internal/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Create inserts a new user. Unique violations on email and identity id are
// mapped to their domain errors so callers can answer with a conflict.
func (r *UserRepository) Create(user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (
			id, identity_id, email, password_hash, role,
			first_name, last_name, phone, address_line1, city,
			state, zip_code, profile_image_url, is_active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.db.Exec(
		query,
		user.ID,
		user.IdentityID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.AddressLine1,
		user.City,
		user.State,
		user.ZipCode,
		user.ProfileImageURL,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if strings.Contains(pqErr.Constraint, "email") {
				return models.ErrDuplicateEmail
			}
			if strings.Contains(pqErr.Constraint, "identity") {
				return models.ErrDuplicateUserID
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User

	query := `
		SELECT id, identity_id, email, password_hash, role,
		       first_name, last_name, phone, address_line1, city,
		       state, zip_code, profile_image_url, is_active,
		       created_at, updated_at
		FROM users
		WHERE id = $1
	`

	err := r.db.Get(&user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

// GetByEmail retrieves a user by normalized email
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User

	query := `
		SELECT id, identity_id, email, password_hash, role,
		       first_name, last_name, phone, address_line1, city,
		       state, zip_code, profile_image_url, is_active,
		       created_at, updated_at
		FROM users
		WHERE email = $1
	`

	err := r.db.Get(&user, query, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found, return nil without error
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// UpdateProfile writes the mutable profile columns of an already-loaded user
func (r *UserRepository) UpdateProfile(user *models.User) error {
	user.UpdatedAt = time.Now()

	query := `
		UPDATE users
		SET first_name = $1,
		    last_name = $2,
		    phone = $3,
		    address_line1 = $4,
		    city = $5,
		    state = $6,
		    zip_code = $7,
		    profile_image_url = $8,
		    updated_at = $9
		WHERE id = $10
	`

	result, err := r.db.Exec(
		query,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.AddressLine1,
		user.City,
		user.State,
		user.ZipCode,
		user.ProfileImageURL,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// SetActive flips the account's active flag
func (r *UserRepository) SetActive(id uuid.UUID, active bool) error {
	query := `
		UPDATE users
		SET is_active = $1,
		    updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.Exec(query, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set user active flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// List retrieves users with pagination, newest first
func (r *UserRepository) List(limit, offset int) ([]*models.User, error) {
	var users []*models.User

	query := `
		SELECT id, identity_id, email, password_hash, role,
		       first_name, last_name, phone, address_line1, city,
		       state, zip_code, profile_image_url, is_active,
		       created_at, updated_at
		FROM users
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	err := r.db.Select(&users, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// Count returns the total number of users
func (r *UserRepository) Count() (int, error) {
	var count int

	query := `SELECT COUNT(*) FROM users`

	err := r.db.QueryRow(query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// IDsByCity returns ids of users whose profile city matches, case-insensitively
func (r *UserRepository) IDsByCity(city string) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	query := `
		SELECT id
		FROM users
		WHERE LOWER(city) = LOWER($1)
	`

	err := r.db.Select(&ids, query, strings.TrimSpace(city))
	if err != nil {
		return nil, fmt.Errorf("failed to list users by city: %w", err)
	}

	return ids, nil
}
