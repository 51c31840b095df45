package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/vyrodovalexey/paybff/internal/config"
	"github.com/vyrodovalexey/paybff/internal/observability"
)

// runUntilSignal serves until SIGINT/SIGTERM or a server failure, then
// shuts down.
func runUntilSignal(app *application, watcher *config.Watcher, logger observability.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() { errCh <- app.server.Start() }()

	var serveErr error
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", observability.String("signal", sig.String()))
	case serveErr = <-errCh:
		if serveErr != nil {
			logger.Error("server failed", observability.Error(serveErr))
		}
	}

	shutdown(app, watcher, logger)
	return serveErr
}

// shutdown stops components in reverse dependency order.
func shutdown(app *application, watcher *config.Watcher, logger observability.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout.Duration())
	defer cancel()

	if watcher != nil {
		_ = watcher.Stop()
	}

	if err := app.server.Stop(ctx); err != nil {
		logger.Error("failed to stop server gracefully", observability.Error(err))
	}

	app.rateLimiter.Stop()

	if err := app.tracer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}

	logger.Info("paybff stopped")
}
