package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
)

// UUIDParams answers NOT_FOUND when any route parameter is not a UUID, since
// every key column is one and nothing else can match a row.
func UUIDParams(writeError ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, param := range c.Params {
			if _, err := uuid.Parse(param.Value); err != nil {
				writeError(c, appErrors.Clone(appErrors.ErrNotFound, "Not found."))
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
