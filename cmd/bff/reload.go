package main

import (
	"context"

	"github.com/vyrodovalexey/paybff/internal/config"
	"github.com/vyrodovalexey/paybff/internal/observability"
)

// startConfigWatcher watches the configuration file. It returns nil when
// there is no file to watch or the watcher cannot start.
func startConfigWatcher(app *application, flags cliFlags, logger observability.Logger) *config.Watcher {
	if flags.configPath == "" {
		return nil
	}

	watcher, err := config.NewWatcher(flags.configPath, reloadHandler(app, flags, logger),
		config.WithLogger(logger),
		config.WithMetrics(app.metrics),
	)
	if err != nil {
		logger.Warn("failed to create config watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(context.Background()); err != nil {
		logger.Warn("failed to start config watcher", observability.Error(err))
		_ = watcher.Stop()
		return nil
	}
	return watcher
}

// reloadHandler applies the log level of a reloaded file. A level pinned
// by flag or environment is left alone, and resilience changes only take
// effect after a restart.
func reloadHandler(app *application, flags cliFlags, logger observability.Logger) config.ReloadCallback {
	return func(newCfg *config.Config) {
		if newCfg.Resilience != app.config.Resilience {
			logger.Warn("resilience settings changed; restart to apply them")
		}

		if flags.logLevel != "" {
			return
		}
		level := newCfg.Observability.Logging.Level
		if level == "" || level == logger.Level() {
			return
		}
		if err := logger.SetLevel(level); err != nil {
			logger.Error("failed to apply log level", observability.String("level", level), observability.Error(err))
			return
		}
		logger.Info("log level changed", observability.String("level", level))
	}
}
