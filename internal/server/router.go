package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/paybff/internal/health"
	"github.com/vyrodovalexey/paybff/internal/observability"
	"github.com/vyrodovalexey/paybff/internal/pipeline"
	"github.com/vyrodovalexey/paybff/internal/server/middleware"
)

// Route paths.
const (
	PathLoginV1    = "/v1/auth/login"
	PathLoginV2    = "/v2/auth/login"
	PathPaymentsV1 = "/v1/payments"
	PathLive       = "/health/live"
	PathReady      = "/health/ready"
)

// Pipeline executes validated commands.
type Pipeline interface {
	Login(ctx context.Context, cmd pipeline.LoginCommand) (*pipeline.LoginResult, error)
	CreatePayment(ctx context.Context, cmd pipeline.CreatePaymentCommand) (*pipeline.PaymentResult, error)
}

// Dependencies are the collaborators of the router. Pipeline and Health
// are required.
type Dependencies struct {
	Pipeline    Pipeline
	Health      *health.Checker
	Logger      observability.Logger
	Metrics     *observability.Metrics
	Tracer      *observability.Tracer
	RateLimiter *middleware.RateLimiter

	// MetricsPath serves Prometheus metrics when Metrics is set.
	MetricsPath string

	MaxRequestBodySize int64
}

// NewRouter builds the gin engine with the middleware chain and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}

	probePaths := []string{PathLive, PathReady}
	if deps.MetricsPath != "" {
		probePaths = append(probePaths, deps.MetricsPath)
	}

	engine := gin.New()
	engine.ContextWithFallback = true
	engine.Use(middleware.Correlation())
	engine.Use(middleware.LoggingWithConfig(middleware.LoggingConfig{Logger: logger, SkipPaths: probePaths}))
	engine.Use(middleware.Tracing(deps.Tracer, probePaths...))
	if deps.Metrics != nil {
		engine.Use(middleware.Metrics(deps.Metrics))
	}
	engine.Use(middleware.ErrorBoundary(logger))
	if deps.RateLimiter != nil {
		engine.Use(middleware.RateLimit(deps.RateLimiter, probePaths...))
	}
	if deps.MaxRequestBodySize > 0 {
		engine.Use(maxRequestBodySize(deps.MaxRequestBodySize))
	}

	h := &handlers{pipeline: deps.Pipeline}
	engine.POST(PathLoginV1, h.loginV1)
	engine.POST(PathLoginV2, h.loginV2)
	engine.POST(PathPaymentsV1, h.createPaymentV1)

	engine.GET(PathLive, deps.Health.LivenessHandler())
	engine.GET(PathReady, deps.Health.ReadinessHandler())
	if deps.Metrics != nil && deps.MetricsPath != "" {
		engine.GET(deps.MetricsPath, gin.WrapH(deps.Metrics.Handler()))
	}

	engine.NoRoute(func(c *gin.Context) {
		middleware.AbortWithProblem(c, middleware.Problem{
			Type:     middleware.ProblemTypeNotFound,
			Title:    "Not Found",
			Status:   http.StatusNotFound,
			Detail:   "No route matched the request",
			Instance: c.Request.URL.Path,
			TraceID:  middleware.GetCorrelationID(c),
		})
	})

	return engine
}
