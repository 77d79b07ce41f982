package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-fee-api/internal/service"
)

// UnmatchedRoute is the path label for requests that match no route.
const UnmatchedRoute = "unmatched"

// Metrics records one observation per request keyed by route template.
// Scrapes of metricsPath are skipped.
func Metrics(metricsSvc *service.MetricsService, metricsPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil || (metricsPath != "" && c.Request.URL.Path == metricsPath) {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = UnmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
