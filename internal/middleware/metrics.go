package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/metrics"
)

// Metrics records request latency labelled by route template, so ids in
// paths do not create new series.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
