package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/database"
	"github.com/tripstack/travel-backend/internal/models"
	"github.com/tripstack/travel-backend/pkg/validator"
)

// UserService handles profile reads and updates plus the admin user surface
type UserService struct {
	users   *database.UserRepository
	address *validator.AddressValidator
	logger  *logrus.Logger
}

// NewUserService creates a new user service
func NewUserService(users *database.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{
		users:   users,
		address: validator.NewAddressValidator(),
		logger:  logger,
	}
}

// GetUser returns a profile, visible to its owner and to admins
func (s *UserService) GetUser(id, requesterID uuid.UUID, isAdmin bool) (*models.User, error) {
	if id != requesterID && !isAdmin {
		return nil, models.ErrForbidden
	}

	user, err := s.users.GetByID(id)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load user")
		return nil, models.Internal(err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	return user, nil
}

// UpdateProfile applies a partial profile update. Email, identity id, role
// and the active flag cannot be changed through this path; state and zip are
// re-validated whenever they appear in the patch.
func (s *UserService) UpdateProfile(id, requesterID uuid.UUID, isAdmin bool, req *models.UpdateProfileRequest) (*models.User, error) {
	if id != requesterID && !isAdmin {
		return nil, models.ErrForbidden
	}

	user, err := s.users.GetByID(id)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load user for update")
		return nil, models.Internal(err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	if req.FirstName != nil {
		name := strings.TrimSpace(*req.FirstName)
		if name == "" {
			return nil, models.MissingField("firstName")
		}
		user.FirstName = name
	}
	if req.LastName != nil {
		name := strings.TrimSpace(*req.LastName)
		if name == "" {
			return nil, models.MissingField("lastName")
		}
		user.LastName = name
	}
	if req.State != nil {
		state, err := s.address.ValidateState(*req.State)
		if err != nil {
			return nil, models.ErrMalformedState.WithCause(err)
		}
		user.State = state
	}
	if req.ZipCode != nil {
		zip, err := s.address.ValidateZip(*req.ZipCode)
		if err != nil {
			return nil, models.ErrMalformedZip.WithCause(err)
		}
		user.ZipCode = zip
	}

	// Optional fields may be cleared with an explicit empty string
	if req.Phone != nil {
		user.Phone = models.NewNullString(strings.TrimSpace(*req.Phone))
	}
	if req.AddressLine1 != nil {
		user.AddressLine1 = models.NewNullString(strings.TrimSpace(*req.AddressLine1))
	}
	if req.City != nil {
		user.City = models.NewNullString(strings.TrimSpace(*req.City))
	}
	if req.ProfileImageURL != nil {
		user.ProfileImageURL = models.NewNullString(strings.TrimSpace(*req.ProfileImageURL))
	}

	if err := s.users.UpdateProfile(user); err != nil {
		if _, ok := models.AsAppError(err); ok {
			return nil, err
		}
		s.logger.WithError(err).Error("Failed to update profile")
		return nil, models.Internal(err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"updated_by": requesterID,
	}).Info("Profile updated")

	return user, nil
}

// ListUsers returns a page of accounts, newest first
func (s *UserService) ListUsers(pageRaw, pageSizeRaw string) (*models.SearchPage, error) {
	page := parsePage(pageRaw)
	pageSize := parsePageSize(pageSizeRaw)

	users, err := s.users.List(pageSize, (page-1)*pageSize)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list users")
		return nil, models.Internal(err)
	}

	total, err := s.users.Count()
	if err != nil {
		s.logger.WithError(err).Error("Failed to count users")
		return nil, models.Internal(err)
	}

	return searchPage(users, total, page, pageSize), nil
}

// DeactivateUser soft-deletes an account. Bookings and reviews survive;
// repeating the call is a no-op success.
func (s *UserService) DeactivateUser(id uuid.UUID) error {
	if err := s.users.SetActive(id, false); err != nil {
		if _, ok := models.AsAppError(err); ok {
			return err
		}
		s.logger.WithError(err).Error("Failed to deactivate user")
		return models.Internal(err)
	}

	s.logger.WithField("user_id", id).Info("User deactivated")
	return nil
}
