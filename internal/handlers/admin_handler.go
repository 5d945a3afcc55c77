package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/models"
	"github.com/tripstack/travel-backend/internal/services"
)

// AdminHandler handles the admin-only user management endpoints
type AdminHandler struct {
	service *services.UserService
	logger  *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service *services.UserService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger,
	}
}

// ListUsers handles GET /api/admin/users
// @Summary List users
// @Description Page through every account, newest first
// @Tags Admin
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Page size (default 20, max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{} "Caller is not an admin"
// @Security Bearer
// @Router /api/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, err := h.service.ListUsers(c.Query("page"), c.Query("pageSize"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"users":    page.Items,
		"total":    page.Total,
		"page":     page.Page,
		"pageSize": page.PageSize,
	})
}

// DeactivateUser handles PATCH /api/admin/users/:id/deactivate
// @Summary Deactivate an account
// @Description Block an account from logging in; existing tokens die at the next lookup
// @Tags Admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Unknown user"
// @Security Bearer
// @Router /api/admin/users/{id}/deactivate [patch]
func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, models.ErrUserNotFound)
		return
	}

	if err := h.service.DeactivateUser(userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deactivated",
	})
}
