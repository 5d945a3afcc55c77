package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripstack/travel-backend/internal/database"
	"github.com/tripstack/travel-backend/internal/models"
)

func newTestUserService(t *testing.T) (*UserService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newServiceTestDB(t)
	return NewUserService(database.NewUserRepository(db), newTestLogger()), mock
}

func strPtr(s string) *string { return &s }

func TestGetUser(t *testing.T) {
	userID := uuid.New()

	t.Run("Owner Reads Own Profile", func(t *testing.T) {
		svc, mock := newTestUserService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs(userID).
			WillReturnRows(userRow(userID, "alice@example.com", "hash", models.RoleUser, true))

		user, err := svc.GetUser(userID, userID, false)

		require.NoError(t, err)
		assert.Equal(t, userID, user.ID)
	})

	t.Run("Admin Reads Any Profile", func(t *testing.T) {
		svc, mock := newTestUserService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WillReturnRows(userRow(userID, "alice@example.com", "hash", models.RoleUser, true))

		_, err := svc.GetUser(userID, uuid.New(), true)

		require.NoError(t, err)
	})

	t.Run("Forbidden For Strangers", func(t *testing.T) {
		svc, mock := newTestUserService(t)

		user, err := svc.GetUser(userID, uuid.New(), false)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, models.ErrForbidden)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		svc, mock := newTestUserService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := svc.GetUser(userID, userID, false)

		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}

func TestUpdateProfile(t *testing.T) {
	userID := uuid.New()

	t.Run("Owner Patches Fields", func(t *testing.T) {
		svc, mock := newTestUserService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WithArgs(userID).
			WillReturnRows(userRow(userID, "alice@example.com", "hash", models.RoleUser, true))
		mock.ExpectExec(`UPDATE users`).
			WithArgs(
				"Alicia", "Smith", models.NewNullString("555-0100"),
				models.NewNullString(""), models.NewNullString("Portland"),
				"OR", "97201", models.NewNullString(""),
				sqlmock.AnyArg(), userID,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		user, err := svc.UpdateProfile(userID, userID, false, &models.UpdateProfileRequest{
			FirstName: strPtr("Alicia"),
			Phone:     strPtr("555-0100"),
			City:      strPtr("Portland"),
			State:     strPtr("or"),
			ZipCode:   strPtr("97201"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Alicia", user.FirstName)
		assert.Equal(t, "OR", user.State)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Rejects Bad State", func(t *testing.T) {
		svc, mock := newTestUserService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WillReturnRows(userRow(userID, "alice@example.com", "hash", models.RoleUser, true))

		_, err := svc.UpdateProfile(userID, userID, false, &models.UpdateProfileRequest{
			State: strPtr("ZZ"),
		})

		assert.ErrorIs(t, err, models.ErrMalformedState)
	})

	t.Run("Rejects Bad Zip", func(t *testing.T) {
		svc, mock := newTestUserService(t)

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \$1`).
			WillReturnRows(userRow(userID, "alice@example.com", "hash", models.RoleUser, true))

		_, err := svc.UpdateProfile(userID, userID, false, &models.UpdateProfileRequest{
			ZipCode: strPtr("123456"),
		})

		assert.ErrorIs(t, err, models.ErrMalformedZip)
	})

	t.Run("Forbidden For Strangers", func(t *testing.T) {
		svc, _ := newTestUserService(t)

		_, err := svc.UpdateProfile(userID, uuid.New(), false, &models.UpdateProfileRequest{
			FirstName: strPtr("Mallory"),
		})

		assert.ErrorIs(t, err, models.ErrForbidden)
	})
}

func TestListUsers(t *testing.T) {
	svc, mock := newTestUserService(t)

	mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(100, 100).
		WillReturnRows(userRow(uuid.New(), "alice@example.com", "hash", models.RoleUser, true))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(250))

	page, err := svc.ListUsers("2", "1000")

	require.NoError(t, err)
	assert.Equal(t, 250, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 100, page.PageSize)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateUser(t *testing.T) {
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		svc, mock := newTestUserService(t)

		mock.ExpectExec(`UPDATE users SET is_active = \$1`).
			WithArgs(false, sqlmock.AnyArg(), userID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, svc.DeactivateUser(userID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown User", func(t *testing.T) {
		svc, mock := newTestUserService(t)

		mock.ExpectExec(`UPDATE users SET is_active = \$1`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := svc.DeactivateUser(userID)

		assert.ErrorIs(t, err, models.ErrUserNotFound)
	})
}
