package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tradeinlabs/phoneworth/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts and latencies.  The route template
// (c.FullPath) labels the series, not the raw URL, to keep cardinality
// bounded; unmatched routes are lumped under "unmatched".
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
