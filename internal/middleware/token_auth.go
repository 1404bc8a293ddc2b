package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/caluny-api/internal/models"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
)

// ContextUserKey is the gin context key storing the authenticated *models.User.
const ContextUserKey = "currentUser"

const missingCredentials = "Authentication credentials were not provided."

// Authenticator resolves the owner of an API key.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*models.User, error)
}

// ErrorWriter renders a failure and is expected to write the response.
type ErrorWriter func(c *gin.Context, err error)

// TokenAuth requires an "Authorization: Token <key>" header. "Bearer" is
// accepted as an alias for clients that only know that scheme.
func TokenAuth(auth Authenticator, writeError ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := tokenFromHeader(c.GetHeader("Authorization"))
		if err == nil {
			var user *models.User
			if user, err = auth.Authenticate(c.Request.Context(), key); err == nil {
				c.Set(ContextUserKey, user)
				c.Next()
				return
			}
		}

		if appErrors.FromError(err).Status == appErrors.ErrUnauthorized.Status {
			c.Header("WWW-Authenticate", "Token")
		}
		writeError(c, err)
		c.Abort()
	}
}

func tokenFromHeader(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, missingCredentials)
	}
	parts := strings.Fields(header)
	if len(parts) == 1 && (strings.EqualFold(parts[0], "Token") || strings.EqualFold(parts[0], "Bearer")) {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "Invalid token header. No credentials provided.")
	}
	if len(parts) != 2 || !(strings.EqualFold(parts[0], "Token") || strings.EqualFold(parts[0], "Bearer")) {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, missingCredentials)
	}
	return parts[1], nil
}

// CurrentUser returns the authenticated user stored by TokenAuth.
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil
	}
	return user
}
