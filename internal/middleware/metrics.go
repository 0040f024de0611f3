package middleware

import (
	"github.com/gin-gonic/gin"

	"valuemap/internal/metrics"
)

// HTTPMetrics counts every request by method, matched route and status.
// Unmatched paths share the "unmatched" route label to bound cardinality.
func HTTPMetrics(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		reg.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status())
	}
}
