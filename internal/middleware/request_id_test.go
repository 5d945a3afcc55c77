package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_Generated(t *testing.T) {
	router := setupTestRouter()

	var seenID string
	router.GET("/ping", RequestID(), func(c *gin.Context) {
		seenID = GetRequestID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	echoed := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, echoed)
	assert.Equal(t, echoed, seenID)

	_, err := uuid.Parse(echoed)
	assert.NoError(t, err, "generated request id should be a UUID")
}

func TestRequestID_HonorsCallerID(t *testing.T) {
	router := setupTestRouter()

	router.GET("/ping", RequestID(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(RequestIDHeader, "trace-12345")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "trace-12345", w.Header().Get(RequestIDHeader))
}

func TestRequestID_BlankHeaderReplaced(t *testing.T) {
	router := setupTestRouter()

	router.GET("/ping", RequestID(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(RequestIDHeader, "   ")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	generated := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, generated)

	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}
