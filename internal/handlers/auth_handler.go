package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/middleware"
	"github.com/tripstack/travel-backend/internal/models"
	"github.com/tripstack/travel-backend/internal/services"
)

// AuthHandler handles registration, login and the current-principal lookup
type AuthHandler struct {
	service *services.AuthService
	logger  *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *services.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// Register handles POST /api/users
// @Summary Register a new user
// @Description Create an account with identity id, email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body models.RegisterRequest true "Registration payload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Validation failure"
// @Failure 409 {object} map[string]interface{} "Email or identity id already taken"
// @Router /api/users [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid register payload")
		respondError(c, models.ErrMalformedBody.WithCause(err))
		return
	}

	user, err := h.service.Register(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"user":    user,
	})
}

// Login handles POST /api/auth/login
// @Summary Log in
// @Description Exchange email and password for a signed access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{} "Invalid credentials"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid login payload")
		respondError(c, models.ErrMalformedBody.WithCause(err))
		return
	}

	accessToken, user, err := h.service.Login(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"accessToken": accessToken,
		"user":        user,
	})
}

// Me handles GET /api/auth/me
// @Summary Current account
// @Description Return the account behind the presented token
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{} "Token invalid or account deactivated"
// @Security Bearer
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	principal := middleware.MustGetPrincipal(c)

	user, err := h.service.Me(principal.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}
