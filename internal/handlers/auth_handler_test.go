package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tripstack/travel-backend/internal/database"
	"github.com/tripstack/travel-backend/internal/middleware"
	"github.com/tripstack/travel-backend/internal/models"
	"github.com/tripstack/travel-backend/internal/services"
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

// setupTestDB creates a mock database for testing
func setupTestDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return &database.PostgresDB{DB: sqlx.NewDb(mockDB, "sqlmock")}, mock
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// setupAuthenticatedContext creates a Gin context with an authenticated
// caller, simulating RequireAuth
func setupAuthenticatedContext(principal middleware.Principal) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.PrincipalKey, principal)
	return c, w
}

// setupAnonymousContext creates a Gin context without authentication
func setupAnonymousContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

// errorEnvelope is the error body every endpoint answers with
type errorEnvelope struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

func setupAuthHandler(db database.DB) *AuthHandler {
	users := database.NewUserRepository(db)
	jwtService := jwt.NewService("test-secret-key-1234567890abcdef", time.Hour)
	service := services.NewAuthService(users, jwtService, testLogger())
	return NewAuthHandler(service, testLogger())
}

func TestRegister_Success(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))

	handler := setupAuthHandler(db)
	c, w := setupAnonymousContext()

	registerReq := models.RegisterRequest{
		IdentityID: "123-45-6789",
		Email:      "Alice@Example.com",
		Password:   "password123",
		FirstName:  "Alice",
		LastName:   "Smith",
		State:      "wa",
		ZipCode:    "98101",
	}
	body, _ := json.Marshal(registerReq)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/users", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Success bool         `json:"success"`
		User    *models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.True(t, response.Success)
	require.NotNil(t, response.User)
	assert.Equal(t, "alice@example.com", response.User.Email)
	assert.Equal(t, "WA", response.User.State)
	assert.Equal(t, models.RoleUser, response.User.Role)

	// The hash must never appear in a response
	assert.NotContains(t, w.Body.String(), "passwordHash")
	assert.NotContains(t, w.Body.String(), "password123")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_MalformedBody(t *testing.T) {
	db, _ := setupTestDB(t)

	handler := setupAuthHandler(db)
	c, w := setupAnonymousContext()

	c.Request, _ = http.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString("{not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.False(t, response.Success)
	assert.Equal(t, "malformed_body", response.ErrorCode)
}

func TestRegister_InvalidEmail(t *testing.T) {
	db, _ := setupTestDB(t)

	handler := setupAuthHandler(db)
	c, w := setupAnonymousContext()

	registerReq := models.RegisterRequest{
		IdentityID: "123-45-6789",
		Email:      "not-an-email",
		Password:   "password123",
		FirstName:  "Alice",
		LastName:   "Smith",
		State:      "WA",
		ZipCode:    "98101",
	}
	body, _ := json.Marshal(registerReq)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/users", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "invalid_email", response.ErrorCode)
}

func TestLogin_Success(t *testing.T) {
	db, mock := setupTestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	userID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(userRow(userID, "alice@example.com", string(hash), models.RoleUser, true))

	handler := setupAuthHandler(db)
	c, w := setupAnonymousContext()

	loginReq := models.LoginRequest{Email: "Alice@Example.com", Password: "password123"}
	body, _ := json.Marshal(loginReq)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success     bool         `json:"success"`
		AccessToken string       `json:"accessToken"`
		User        *models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.True(t, response.Success)
	assert.NotEmpty(t, response.AccessToken)
	require.NotNil(t, response.User)
	assert.Equal(t, userID, response.User.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_WrongPassword(t *testing.T) {
	db, mock := setupTestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("a-different-password"), bcrypt.MinCost)
	require.NoError(t, err)

	userID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(userRow(userID, "alice@example.com", string(hash), models.RoleUser, true))

	handler := setupAuthHandler(db)
	c, w := setupAnonymousContext()

	loginReq := models.LoginRequest{Email: "alice@example.com", Password: "password123"}
	body, _ := json.Marshal(loginReq)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "invalid_credentials", response.ErrorCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogin_UnknownEmail(t *testing.T) {
	db, mock := setupTestDB(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	handler := setupAuthHandler(db)
	c, w := setupAnonymousContext()

	loginReq := models.LoginRequest{Email: "ghost@example.com", Password: "password123"}
	body, _ := json.Marshal(loginReq)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBuffer(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	// Same code as a wrong password so emails cannot be probed
	assert.Equal(t, "invalid_credentials", response.ErrorCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMe_Success(t *testing.T) {
	db, mock := setupTestDB(t)

	userID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(userID).
		WillReturnRows(userRow(userID, "alice@example.com", "hash", models.RoleUser, true))

	handler := setupAuthHandler(db)
	c, w := setupAuthenticatedContext(middleware.Principal{UserID: userID, Email: "alice@example.com", Role: models.RoleUser})
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/auth/me", nil)

	handler.Me(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Success bool         `json:"success"`
		User    *models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.True(t, response.Success)
	require.NotNil(t, response.User)
	assert.Equal(t, userID, response.User.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMe_DeactivatedAccount(t *testing.T) {
	db, mock := setupTestDB(t)

	userID := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(userID).
		WillReturnRows(userRow(userID, "alice@example.com", "hash", models.RoleUser, false))

	handler := setupAuthHandler(db)
	c, w := setupAuthenticatedContext(middleware.Principal{UserID: userID, Email: "alice@example.com", Role: models.RoleUser})
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/auth/me", nil)

	handler.Me(c)

	// A token outliving its account is a dead session
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "invalid_credentials", response.ErrorCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
