package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripstack/travel-backend/internal/database"
	"github.com/tripstack/travel-backend/internal/models"
	"github.com/tripstack/travel-backend/pkg/jwt"
	"github.com/tripstack/travel-backend/pkg/validator"
)

// dummyPasswordHash is compared against when the email is unknown so a
// missing account costs the same as a wrong password.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

const minPasswordLength = 8

// AuthService handles registration, login and token-backed identity
type AuthService struct {
	users      *database.UserRepository
	jwtService *jwt.Service
	identity   *validator.IdentityValidator
	email      *validator.EmailValidator
	address    *validator.AddressValidator
	logger     *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users *database.UserRepository, jwtService *jwt.Service, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		identity:   validator.NewIdentityValidator(),
		email:      validator.NewEmailValidator(),
		address:    validator.NewAddressValidator(),
		logger:     logger,
	}
}

// Register validates the payload, hashes the password and creates the user.
// Field checks run in a fixed order so clients always see the first failing
// code: identity id, email, state, zip, then password.
func (s *AuthService) Register(req *models.RegisterRequest) (*models.User, error) {
	identityID, err := s.identity.Validate(req.IdentityID)
	if err != nil {
		return nil, models.ErrInvalidUserID.WithCause(err)
	}

	email, err := s.email.Validate(req.Email)
	if err != nil {
		return nil, models.ErrInvalidEmail.WithCause(err)
	}

	state, err := s.address.ValidateState(req.State)
	if err != nil {
		return nil, models.ErrMalformedState.WithCause(err)
	}

	zip, err := s.address.ValidateZip(req.ZipCode)
	if err != nil {
		return nil, models.ErrMalformedZip.WithCause(err)
	}

	if len(req.Password) < minPasswordLength {
		return nil, models.ErrInvalidPassword
	}

	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		return nil, models.MissingField("firstName")
	}
	lastName := strings.TrimSpace(req.LastName)
	if lastName == "" {
		return nil, models.MissingField("lastName")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.Internal(err)
	}

	user := &models.User{
		ID:              uuid.New(),
		IdentityID:      identityID,
		Email:           email,
		PasswordHash:    string(hash),
		Role:            models.RoleUser,
		FirstName:       firstName,
		LastName:        lastName,
		Phone:           models.NewNullString(strings.TrimSpace(req.Phone)),
		AddressLine1:    models.NewNullString(strings.TrimSpace(req.AddressLine1)),
		City:            models.NewNullString(strings.TrimSpace(req.City)),
		State:           state,
		ZipCode:         zip,
		ProfileImageURL: models.NewNullString(strings.TrimSpace(req.ProfileImageURL)),
		IsActive:        true,
	}

	if err := s.users.Create(user); err != nil {
		if _, ok := models.AsAppError(err); ok {
			return nil, err
		}
		s.logger.WithError(err).Error("Failed to create user")
		return nil, models.Internal(err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	return user, nil
}

// Login verifies credentials and returns a signed access token. Every
// rejection is the same invalid_credentials so callers cannot probe which
// emails exist.
func (s *AuthService) Login(req *models.LoginRequest) (string, *models.User, error) {
	email, err := s.email.Validate(req.Email)
	if err != nil {
		return "", nil, models.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load user for login")
		return "", nil, models.Internal(err)
	}

	if user == nil {
		// Burn a compare anyway to keep the timing flat
		bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(req.Password))
		return "", nil, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, models.ErrInvalidCredentials
	}

	if !user.IsActive {
		return "", nil, models.ErrInvalidCredentials
	}

	accessToken, err := s.jwtService.GenerateToken(user.ID, user.Email, user.Role, user.FirstName, user.LastName)
	if err != nil {
		s.logger.WithError(err).Error("Failed to sign access token")
		return "", nil, models.Internal(err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User logged in")

	return accessToken, user, nil
}

// Me reloads the authenticated user's row. A row that has disappeared or
// been deactivated since the token was issued is treated as a dead session.
func (s *AuthService) Me(userID uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load current user")
		return nil, models.Internal(err)
	}

	if user == nil || !user.IsActive {
		return nil, models.ErrInvalidCredentials
	}

	return user, nil
}
