package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tripstack/travel-backend/internal/models"
	"github.com/tripstack/travel-backend/pkg/jwt"
)

// PrincipalKey is the key used to store the caller in the Gin context
const PrincipalKey = "principal"

// Principal is the authenticated caller attached to the request context
type Principal struct {
	UserID    uuid.UUID `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

// IsAdmin reports whether the caller holds the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// RequireAuth validates the bearer token and attaches the principal. Requests
// without a valid token never reach the handler.
func RequireAuth(jwtService *jwt.Service, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := principalFromHeader(c, jwtService)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"path": c.Request.URL.Path,
				"ip":   c.ClientIP(),
			}).WithError(err).Warn("Authentication failed")
			abortWithError(c, err)
			return
		}

		c.Set(PrincipalKey, *principal)
		c.Next()
	}
}

// OptionalAuth attaches the principal when a valid bearer token is supplied.
// Requests without a token, or with one that fails validation, continue
// anonymously; the handler sees no principal either way.
func OptionalAuth(jwtService *jwt.Service, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}

		principal, err := principalFromHeader(c, jwtService)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"path": c.Request.URL.Path,
				"ip":   c.ClientIP(),
			}).WithError(err).Debug("Ignoring invalid token on optional-auth route")
			c.Next()
			return
		}

		c.Set(PrincipalKey, *principal)
		c.Next()
	}
}

// RequireAdmin allows only callers whose token carries the admin role. Apply
// after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			abortWithError(c, models.ErrTokenMissing)
			return
		}

		if !principal.IsAdmin() {
			abortWithError(c, models.ErrForbidden)
			return
		}

		c.Next()
	}
}

// GetPrincipal retrieves the caller from the Gin context
func GetPrincipal(c *gin.Context) (Principal, bool) {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return Principal{}, false
	}

	principal, ok := value.(Principal)
	if !ok {
		return Principal{}, false
	}

	return principal, true
}

// MustGetPrincipal retrieves the caller or panics (use only behind RequireAuth)
func MustGetPrincipal(c *gin.Context) Principal {
	principal, ok := GetPrincipal(c)
	if !ok {
		panic("principal not found - ensure RequireAuth is applied")
	}
	return principal
}

func principalFromHeader(c *gin.Context, jwtService *jwt.Service) (*Principal, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, models.ErrTokenMissing
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, models.ErrTokenInvalid
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return nil, models.ErrTokenInvalid
	}

	claims, err := jwtService.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, models.ErrTokenExpired
		}
		return nil, models.ErrTokenInvalid
	}

	return &Principal{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}, nil
}

func abortWithError(c *gin.Context, err error) {
	appErr, ok := models.AsAppError(err)
	if !ok {
		appErr = models.Internal(err)
	}

	c.AbortWithStatusJSON(appErr.Status, gin.H{
		"success":   false,
		"errorCode": appErr.Code,
		"message":   appErr.Message,
	})
}
