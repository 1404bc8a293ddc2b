package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/caluny-api/internal/service"
)

const unmatchedRoute = "unmatched"

// Metrics observes every request by route template. Requests that match no
// route share one label so scanners cannot inflate the series count, and
// Prometheus scrapes are not counted.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
