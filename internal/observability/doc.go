// Package observability provides logging, metrics, and tracing
// functionality for the BFF.
//
// # Logging
//
// The Logger interface wraps zap. Loggers derived with With or
// WithContext share one atomic level, so a configuration reload can
// change verbosity for every component at once:
//
//	logger, err := observability.NewLogger(observability.DefaultLogConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer func() { _ = logger.Sync() }()
//
//	logger.WithContext(ctx).Info("payment processed",
//	    observability.String("payment_id", id),
//	)
//
// WithContext attaches the correlation id and, when a span is active,
// the trace and span ids.
//
// # Metrics
//
// Prometheus metrics on a private registry, covering inbound requests,
// provider attempts, retries and circuit breaker state:
//
//	metrics := observability.NewMetrics("bff")
//	router.GET("/metrics", gin.WrapH(metrics.Handler()))
//
// # Tracing
//
// OpenTelemetry tracing with OTLP gRPC export. Outbound provider calls
// carry W3C trace context via InjectTraceContext.
package observability
