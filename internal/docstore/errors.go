package docstore

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tripstack/travel-backend/internal/models"
)

// storeError classifies a driver failure. Connectivity problems and timeouts
// surface as network_error so clients see a 502 instead of internal_error;
// anything else is wrapped for the caller.
func storeError(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return models.ErrNetworkError.WithCause(err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
