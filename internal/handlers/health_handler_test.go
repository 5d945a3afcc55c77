package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripstack/travel-backend/internal/database"
)

// setupPingableDB creates a mock database that records Ping calls
func setupPingableDB(t *testing.T) (database.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return &database.PostgresDB{DB: sqlx.NewDb(mockDB, "sqlmock")}, mock
}

func TestHealthCheck_OK(t *testing.T) {
	db, mock := setupPingableDB(t)
	mock.ExpectPing()

	handler := NewHealthHandler(db, nil, testLogger())
	c, w := setupAnonymousContext()
	c.Request, _ = http.NewRequest(http.MethodGet, "/health", nil)

	handler.Check(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "ok", response.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	db, mock := setupPingableDB(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	handler := NewHealthHandler(db, nil, testLogger())
	c, w := setupAnonymousContext()
	c.Request, _ = http.NewRequest(http.MethodGet, "/health", nil)

	handler.Check(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "unavailable", response.Status)
}
