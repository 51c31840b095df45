package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/paybff/internal/correlation"
)

// CorrelationIDKey is the gin context key for the correlation id.
const CorrelationIDKey = "correlationID"

// Correlation accepts a well-formed inbound X-Correlation-ID or mints a
// new one, stores it on the request context and echoes it on the
// response before any handler writes.
func Correlation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := correlation.FromInbound(c.GetHeader(correlation.Header))

		c.Set(CorrelationIDKey, id)
		c.Request = c.Request.WithContext(correlation.WithID(c.Request.Context(), id))
		c.Header(correlation.Header, id)

		c.Next()
	}
}

// GetCorrelationID returns the correlation id of the request.
func GetCorrelationID(c *gin.Context) string {
	if id := c.GetString(CorrelationIDKey); id != "" {
		return id
	}
	return correlation.FromContext(c.Request.Context())
}
