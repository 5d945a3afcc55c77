package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripstack/travel-backend/internal/database"
	"github.com/tripstack/travel-backend/internal/models"
	"github.com/tripstack/travel-backend/pkg/jwt"
)

var userColumns = []string{
	"id", "identity_id", "email", "password_hash", "role",
	"first_name", "last_name", "phone", "address_line1", "city",
	"state", "zip_code", "profile_image_url", "is_active",
	"created_at", "updated_at",
}

func userRow(id uuid.UUID, email, passwordHash, role string, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userColumns).AddRow(
		id, "123-45-6789", email, passwordHash, role,
		"Alice", "Smith", nil, nil, "Seattle",
		"WA", "98101", nil, active, now, now,
	)
}

func newTestAuthService(t *testing.T) (*AuthService, sqlmock.Sqlmock, *jwt.Service) {
	t.Helper()

	db, mock := newServiceTestDB(t)
	jwtService := jwt.NewService("test-secret", time.Hour)
	return NewAuthService(database.NewUserRepository(db), jwtService, newTestLogger()), mock, jwtService
}

func validRegisterRequest() *models.RegisterRequest {
	return &models.RegisterRequest{
		IdentityID: "123-45-6789",
		Email:      "Alice@Example.COM",
		Password:   "correct-horse",
		FirstName:  "Alice",
		LastName:   "Smith",
		State:      "wa",
		ZipCode:    "98101",
		City:       "Seattle",
	}
}

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc, mock, _ := newTestAuthService(t)

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		user, err := svc.Register(validRegisterRequest())

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "WA", user.State)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "correct-horse", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct-horse")))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Validation Order", func(t *testing.T) {
		tests := []struct {
			name     string
			mutate   func(req *models.RegisterRequest)
			wantCode string
		}{
			{
				name: "Identity First",
				mutate: func(req *models.RegisterRequest) {
					req.IdentityID = "123456789"
					req.Email = "not-an-email"
				},
				wantCode: "invalid_user_id",
			},
			{
				name: "Email Second",
				mutate: func(req *models.RegisterRequest) {
					req.Email = "not-an-email"
					req.State = "XX"
				},
				wantCode: "invalid_email",
			},
			{
				name: "State Third",
				mutate: func(req *models.RegisterRequest) {
					req.State = "XX"
					req.ZipCode = "123"
				},
				wantCode: "malformed_state",
			},
			{
				name: "Zip Fourth",
				mutate: func(req *models.RegisterRequest) {
					req.ZipCode = "981o1"
					req.Password = "short"
				},
				wantCode: "malformed_zip",
			},
			{
				name: "Password Fifth",
				mutate: func(req *models.RegisterRequest) {
					req.Password = "seven77"
				},
				wantCode: "invalid_password",
			},
			{
				name: "First Name Required",
				mutate: func(req *models.RegisterRequest) {
					req.FirstName = "   "
				},
				wantCode: "missing_firstName",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, _, _ := newTestAuthService(t)

				req := validRegisterRequest()
				tt.mutate(req)

				user, err := svc.Register(req)

				assert.Nil(t, user)
				appErr, ok := models.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantCode, appErr.Code)
			})
		}
	})

	t.Run("Duplicate Email", func(t *testing.T) {
		svc, mock, _ := newTestAuthService(t)

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		_, err := svc.Register(validRegisterRequest())

		assert.ErrorIs(t, err, models.ErrDuplicateEmail)
	})

	t.Run("Duplicate Identity ID", func(t *testing.T) {
		svc, mock, _ := newTestAuthService(t)

		mock.ExpectExec(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_identity_id_key"})

		_, err := svc.Register(validRegisterRequest())

		assert.ErrorIs(t, err, models.ErrDuplicateUserID)
	})
}

func TestLogin(t *testing.T) {
	userID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}

	t.Run("Success", func(t *testing.T) {
		svc, mock, jwtService := newTestAuthService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
			WithArgs("alice@example.com").
			WillReturnRows(userRow(userID, "alice@example.com", string(hash), models.RoleUser, true))

		token, user, err := svc.Login(&models.LoginRequest{
			Email:    " Alice@Example.com ",
			Password: "correct-horse",
		})

		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, userID, user.ID)

		claims, err := jwtService.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, models.RoleUser, claims.Role)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Email", func(t *testing.T) {
		svc, mock, _ := newTestAuthService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
			WillReturnRows(sqlmock.NewRows(userColumns))

		token, user, err := svc.Login(&models.LoginRequest{
			Email:    "nobody@example.com",
			Password: "whatever-long",
		})

		assert.Empty(t, token)
		assert.Nil(t, user)
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		svc, mock, _ := newTestAuthService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
			WillReturnRows(userRow(userID, "alice@example.com", string(hash), models.RoleUser, true))

		_, _, err := svc.Login(&models.LoginRequest{
			Email:    "alice@example.com",
			Password: "wrong-horse",
		})

		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("Inactive Account", func(t *testing.T) {
		svc, mock, _ := newTestAuthService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \$1`).
			WillReturnRows(userRow(userID, "alice@example.com", string(hash), models.RoleUser, false))

		_, _, err := svc.Login(&models.LoginRequest{
			Email:    "alice@example.com",
			Password: "correct-horse",
		})

		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("Malformed Email Never Hits Store", func(t *testing.T) {
		svc, mock, _ := newTestAuthService(t)

		_, _, err := svc.Login(&models.LoginRequest{
			Email:    "}{",
			Password: "correct-horse",
		})

		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMe(t *testing.T) {
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		svc, mock, _ := newTestAuthService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs(userID).
			WillReturnRows(userRow(userID, "alice@example.com", "hash", models.RoleUser, true))

		user, err := svc.Me(userID)

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("Deactivated Since Token Issue", func(t *testing.T) {
		svc, mock, _ := newTestAuthService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WillReturnRows(userRow(userID, "alice@example.com", "hash", models.RoleUser, false))

		_, err := svc.Me(userID)

		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("Row Gone", func(t *testing.T) {
		svc, mock, _ := newTestAuthService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := svc.Me(userID)

		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})
}
