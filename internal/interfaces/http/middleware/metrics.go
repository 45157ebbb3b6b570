package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/shopbill/backend/internal/infrastructure/metrics"
)

// Metrics records request count, latency and in-flight requests. Requests
// are labelled by route template, never by raw path.
func Metrics(m *metrics.HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := m.Start()
		c.Next()
		done(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
