// Package middleware provides HTTP middleware for the sync API.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/channelsync/backend/internal/infrastructure/telemetry"
)

// HTTPMetrics returns a middleware that records request count and latency
// through the given instruments. Routes are recorded as patterns, not raw
// paths, to keep label cardinality bounded.
func HTTPMetrics(metrics *telemetry.HTTPMetrics) gin.HandlerFunc {
	if metrics == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		metrics.RecordRequest(
			c.Request.Context(),
			c.Request.Method,
			route,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}
