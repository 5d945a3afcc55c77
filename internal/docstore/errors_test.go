package docstore

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tripstack/travel-backend/internal/models"
)

func TestStoreError(t *testing.T) {
	t.Run("Network Failure Maps To Bad Gateway", func(t *testing.T) {
		driverErr := mongo.CommandError{Labels: []string{"NetworkError"}}

		err := storeError("load session events", driverErr)

		appErr, ok := models.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, "network_error", appErr.Code)
		assert.Equal(t, http.StatusBadGateway, appErr.Status)
	})

	t.Run("Other Failures Stay Opaque", func(t *testing.T) {
		cause := errors.New("document too large")

		err := storeError("insert review", cause)

		_, ok := models.AsAppError(err)
		assert.False(t, ok)
		assert.ErrorIs(t, err, cause)
	})
}
