package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/middleware"
	"github.com/tripstack/travel-backend/internal/models"
	"github.com/tripstack/travel-backend/internal/services"
)

// UserHandler handles profile reads and updates
type UserHandler struct {
	service *services.UserService
	logger  *logrus.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(service *services.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

// GetUser handles GET /api/users/:id
// @Summary Get a user profile
// @Description Return a profile, visible to its owner and to admins
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Not the owner"
// @Failure 404 {object} map[string]interface{} "Unknown user"
// @Security Bearer
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, models.ErrUserNotFound)
		return
	}

	user, err := h.service.GetUser(userID, principal.UserID, principal.IsAdmin())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

// UpdateProfile handles PATCH /api/users/:id
// @Summary Update a user profile
// @Description Apply a partial profile update, allowed for the owner and for admins
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param profile body models.UpdateProfileRequest true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Validation failure"
// @Failure 403 {object} map[string]interface{} "Not the owner"
// @Failure 404 {object} map[string]interface{} "Unknown user"
// @Security Bearer
// @Router /api/users/{id} [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, models.ErrUserNotFound)
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid profile payload")
		respondError(c, models.ErrMalformedBody.WithCause(err))
		return
	}

	user, err := h.service.UpdateProfile(userID, principal.UserID, principal.IsAdmin(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}
