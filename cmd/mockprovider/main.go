// Package main runs a mock payment provider for local runs and load
// tests. It answers /api/authenticate, /api/pay and /health and can
// inject latency and failures.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/paybff/internal/observability"
)

func main() {
	addr := flag.String("addr", getEnvOrDefault("MOCK_PROVIDER_ADDR", "localhost:5001"), "Listen address")
	logLevel := flag.String("log-level", getEnvOrDefault("MOCK_PROVIDER_LOG_LEVEL", "info"), "Log level")
	failureRate := flag.Float64("failure-rate", getEnvFloat("MOCK_PROVIDER_FAILURE_RATE", 0),
		"Fraction of API calls answered with -failure-status (0..1)")
	failureStatus := flag.Int("failure-status", getEnvInt("MOCK_PROVIDER_FAILURE_STATUS", http.StatusServiceUnavailable),
		"Status code of injected failures")
	latencyMin := flag.Duration("latency-min", getEnvDuration("MOCK_PROVIDER_LATENCY_MIN", 20*time.Millisecond),
		"Minimum simulated latency")
	latencyMax := flag.Duration("latency-max", getEnvDuration("MOCK_PROVIDER_LATENCY_MAX", 100*time.Millisecond),
		"Maximum simulated latency")
	flag.Parse()

	logger, err := observability.NewLogger(observability.LogConfig{Level: *logLevel, Format: "json"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	faults := Faults{
		FailureRate:   *failureRate,
		FailureStatus: *failureStatus,
		LatencyMin:    *latencyMin,
		LatencyMax:    *latencyMax,
	}
	if err := faults.Validate(); err != nil {
		logger.Fatal("invalid fault configuration", observability.Error(err))
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           NewProvider(faults, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("mock provider listening",
			observability.String("address", *addr),
			observability.Float64("failure_rate", faults.FailureRate),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("mock provider failed", observability.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("failed to stop mock provider", observability.Error(err))
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
