package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/paybff/internal/observability"
)

// ErrorBoundary renders handler errors and panics as problem+json. A
// handler reports an error with c.Error and returns without writing.
func ErrorBoundary(logger observability.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = observability.NopLogger()
	}

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v", r)
				logger.WithContext(c.Request.Context()).Error("panic recovered",
					observability.Any("panic", r),
					observability.String("method", c.Request.Method),
					observability.String("path", c.Request.URL.Path),
					observability.ByteString("stack", debug.Stack()),
				)
				render(c, logger, err)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		render(c, logger, c.Errors.Last().Err)
	}
}

func render(c *gin.Context, logger observability.Logger, err error) {
	p := ProblemFor(err, c.Request.URL.Path, GetCorrelationID(c))

	if p.Status >= 500 {
		span := trace.SpanFromContext(c.Request.Context())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		logger.WithContext(c.Request.Context()).Error("unhandled error",
			observability.String("path", c.Request.URL.Path),
			observability.Error(err),
		)
	} else {
		logger.WithContext(c.Request.Context()).Debug("request rejected",
			observability.String("path", c.Request.URL.Path),
			observability.Error(err),
		)
	}

	AbortWithProblem(c, p)
}
