package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/paybff/internal/observability"
)

// unmatchedRoute labels requests that hit no route, keeping label
// cardinality bounded.
const unmatchedRoute = "unmatched"

// Metrics records request count, latency and in-flight requests.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.IncrementActiveRequests()
		start := time.Now()

		defer func() {
			m.DecrementActiveRequests()

			route := c.FullPath()
			if route == "" {
				route = unmatchedRoute
			}
			m.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
		}()

		c.Next()
	}
}
