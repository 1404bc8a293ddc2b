package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/caluny-api/internal/service"
	appErrors "github.com/noah-isme/caluny-api/pkg/errors"
)

// Limiter counts hits on a key inside a window.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit rejects callers exceeding limit requests per window on a route,
// keyed by client IP. Limiter failures let the request through.
func RateLimit(limiter Limiter, limit int, window time.Duration, metricsSvc *service.MetricsService, logger *zap.Logger, writeError ErrorWriter) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), path)
		allowed, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			metricsSvc.RateLimited(path)
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			writeError(c, appErrors.Clone(appErrors.ErrTooManyRequests, "Request was throttled."))
			c.Abort()
			return
		}

		c.Next()
	}
}
