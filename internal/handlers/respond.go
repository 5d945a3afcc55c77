package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/tripstack/travel-backend/internal/models"
)

// respondError writes the uniform error envelope. Anything that is not an
// AppError is treated as unexpected and surfaced as internal_error so raw
// driver messages never reach clients.
func respondError(c *gin.Context, err error) {
	appErr, ok := models.AsAppError(err)
	if !ok {
		appErr = models.Internal(err)
	}

	c.JSON(appErr.Status, gin.H{
		"success":   false,
		"errorCode": appErr.Code,
		"message":   appErr.Message,
	})
}
