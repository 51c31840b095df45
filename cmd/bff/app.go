package main

import (
	"fmt"
	"time"

	"github.com/vyrodovalexey/paybff/internal/circuitbreaker"
	"github.com/vyrodovalexey/paybff/internal/config"
	"github.com/vyrodovalexey/paybff/internal/gateway"
	"github.com/vyrodovalexey/paybff/internal/health"
	"github.com/vyrodovalexey/paybff/internal/observability"
	"github.com/vyrodovalexey/paybff/internal/pipeline"
	"github.com/vyrodovalexey/paybff/internal/provider"
	"github.com/vyrodovalexey/paybff/internal/retry"
	"github.com/vyrodovalexey/paybff/internal/server"
	"github.com/vyrodovalexey/paybff/internal/server/middleware"
)

// application holds all application components.
type application struct {
	config      *config.Config
	metrics     *observability.Metrics
	tracer      *observability.Tracer
	breaker     circuitbreaker.Breaker
	gateway     *gateway.Gateway
	rateLimiter *middleware.RateLimiter
	server      *server.Server
}

// newApplication wires every component from cfg.
func newApplication(cfg *config.Config, logger observability.Logger) (*application, error) {
	metrics := observability.NewMetrics(cfg.Observability.Metrics.Namespace)
	metrics.SetBuildInfo(version, gitCommit, buildTime)

	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:    cfg.Observability.Tracing.ServiceName,
		ServiceVersion: version,
		OTLPEndpoint:   cfg.Observability.Tracing.OTLPEndpoint,
		SamplingRate:   cfg.Observability.Tracing.SamplingRate,
		Insecure:       cfg.Observability.Tracing.Insecure,
		Enabled:        cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}

	client, err := provider.NewClient(provider.Config{
		BaseURL:    cfg.Provider.BaseURL,
		HealthPath: cfg.Provider.HealthPath,
		Transport: provider.TransportConfig{
			MaxIdleConns:        cfg.Provider.MaxIdleConns,
			MaxIdleConnsPerHost: cfg.Provider.MaxIdleConnsPerHost,
			IdleConnTimeout:     cfg.Provider.IdleConnTimeout.Duration(),
			DialTimeout:         cfg.Provider.DialTimeout.Duration(),
		},
	}, logger)
	if err != nil {
		return nil, err
	}

	breaker, err := newBreaker(cfg.Resilience, metrics, logger)
	if err != nil {
		return nil, err
	}

	gw, err := gateway.New(client,
		gateway.WithLogger(logger),
		gateway.WithMetrics(metrics),
		gateway.WithTracer(tracer),
		gateway.WithBreaker(breaker),
		gateway.WithRetryPolicy(retryPolicy(cfg.Resilience)),
		gateway.WithAttemptTimeout(cfg.Resilience.PerAttemptTimeout()),
	)
	if err != nil {
		return nil, err
	}

	checker := health.NewChecker(cfg.Provider.HealthTimeout.Duration(), logger)
	checker.Register(health.ProviderCheck(client))

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, cfg.RateLimit.PerClient,
			middleware.WithRateLimiterLogger(logger),
			middleware.WithRateLimiterMetrics(metrics),
		)
		limiter.StartAutoCleanup()
	}

	metricsPath := ""
	if cfg.Observability.Metrics.Enabled {
		metricsPath = cfg.Observability.Metrics.Path
	}

	serverCfg := server.DefaultConfig()
	serverCfg.Host = cfg.Server.Host
	serverCfg.Port = cfg.Server.Port
	serverCfg.ReadTimeout = cfg.Server.ReadTimeout.Duration()
	serverCfg.WriteTimeout = cfg.Server.WriteTimeout.Duration()
	serverCfg.IdleTimeout = cfg.Server.IdleTimeout.Duration()

	server.SetReleaseMode()
	engine := server.NewRouter(server.Dependencies{
		Pipeline:           pipeline.New(gw, logger),
		Health:             checker,
		Logger:             logger,
		Metrics:            metrics,
		Tracer:             tracer,
		RateLimiter:        limiter,
		MetricsPath:        metricsPath,
		MaxRequestBodySize: serverCfg.MaxRequestBodySize,
	})

	return &application{
		config:      cfg,
		metrics:     metrics,
		tracer:      tracer,
		breaker:     breaker,
		gateway:     gw,
		rateLimiter: limiter,
		server:      server.New(serverCfg, engine, logger),
	}, nil
}

// newBreaker builds the shared provider breaker. Transitions are logged
// and exported as a gauge.
func newBreaker(
	r config.ResilienceConfig,
	metrics *observability.Metrics,
	logger observability.Logger,
) (circuitbreaker.Breaker, error) {
	cfg := circuitbreaker.DefaultConfig()
	cfg.Threshold = r.BreakerThreshold
	cfg.BreakDuration = r.BreakDuration()
	cfg.Engine = r.BreakerEngine
	cfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
		metrics.SetCircuitBreakerState(name, int(to))
		fields := []observability.Field{
			observability.String("breaker", name),
			observability.String("from", from.String()),
			observability.String("to", to.String()),
		}
		if to == circuitbreaker.StateOpen {
			logger.Warn("circuit breaker opened", append(fields, observability.Duration("break_duration", cfg.BreakDuration))...)
			return
		}
		logger.Info("circuit breaker state changed", fields...)
	}

	breaker, err := circuitbreaker.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create circuit breaker: %w", err)
	}
	metrics.SetCircuitBreakerState(breaker.Name(), int(breaker.State()))
	return breaker, nil
}

// retryPolicy converts the resilience section into a retry policy.
func retryPolicy(r config.ResilienceConfig) retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxRetries = r.RetryAttempts
	p.Backoff = retry.ExponentialBackoff{
		Base:      r.BackoffBaseSeconds,
		Unit:      time.Second,
		JitterMax: r.JitterMax(),
	}
	return p
}
