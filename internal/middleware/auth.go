package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flowtrack/flowtrack-api/internal/constants"
	apierrors "github.com/flowtrack/flowtrack-api/internal/errors"
	"github.com/flowtrack/flowtrack-api/internal/logger"
	"github.com/flowtrack/flowtrack-api/internal/models"
	"github.com/flowtrack/flowtrack-api/internal/policy"
	"github.com/flowtrack/flowtrack-api/internal/services"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		if !authenticate(c, auth, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves a bearer token when one is sent. Requests without an
// Authorization header continue anonymously; a bad token is still rejected.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, ok := bearerToken(header)
		if !ok {
			apierrors.Unauthorized(c, "Could not validate credentials")
			return
		}

		if !authenticate(c, auth, token) {
			return
		}
		c.Next()
	}
}

// RequirePermission rejects authenticated users whose role may not perform action
func RequirePermission(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		if !policy.Allows(user.Role, action) {
			apierrors.Respond(c, apierrors.ErrCodeForbidden, "Insufficient permissions", gin.H{
				"required_roles": policy.RolesFor(action),
			})
			return
		}
		c.Next()
	}
}

// GetCurrentUser retrieves the authenticated user from context
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

// GetCaller returns the request's caller, anonymous when no user was resolved
func GetCaller(c *gin.Context) services.Caller {
	if user, ok := GetCurrentUser(c); ok {
		return services.AuthenticatedAs(user)
	}
	return services.Anonymous()
}

// SetCurrentUser stores user in context the way the auth middleware does
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(constants.ContextKeyUser, user)
	c.Set(constants.ContextKeyUserID, user.ID)
}

func authenticate(c *gin.Context, auth Authenticator, token string) bool {
	user, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			apierrors.Unauthorized(c, "Could not validate credentials")
			return false
		}
		log := logger.Get()
		log.Error().Err(err).Msg("failed to authenticate request")
		apierrors.InternalError(c, "")
		return false
	}

	SetCurrentUser(c, user)
	return true
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, constants.TokenType) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
