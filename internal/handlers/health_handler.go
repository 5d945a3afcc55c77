package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/database"
	"github.com/tripstack/travel-backend/internal/docstore"
)

// HealthHandler reports whether both backing stores answer
type HealthHandler struct {
	db     database.DB
	store  *docstore.Store
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db database.DB, store *docstore.Store, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		store:  store,
		logger: logger,
	}
}

// Check handles GET /health
// @Summary Health check
// @Description Ping both backing stores
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{} "A store is unreachable"
// @Router /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		h.logger.WithError(err).Error("Database ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}

	if h.store != nil {
		if err := h.store.Ping(c.Request.Context()); err != nil {
			h.logger.WithError(err).Error("Document store ping failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
