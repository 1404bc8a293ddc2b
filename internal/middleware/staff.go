package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
)

// RequireStaff lets only staff users through. It must run after TokenAuth.
func RequireStaff(writeError ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			writeError(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !user.IsStaff {
			writeError(c, appErrors.Clone(appErrors.ErrForbidden, "You do not have permission to perform this action."))
			c.Abort()
			return
		}
		c.Next()
	}
}
