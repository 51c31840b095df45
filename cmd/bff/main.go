// Package main is the entry point for the payment BFF.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/vyrodovalexey/paybff/internal/config"
	"github.com/vyrodovalexey/paybff/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags. Empty logLevel and logFormat defer
// to the configuration file.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	if flags.showVersion {
		printVersion(os.Stdout)
		return
	}

	if err := run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "paybff: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags parses command line flags. Environment variables supply the
// defaults.
func parseFlags(fs *flag.FlagSet, args []string) (cliFlags, error) {
	var f cliFlags
	fs.StringVar(&f.configPath, "config", getEnvOrDefault(EnvConfigPath, "configs/bff.yaml"),
		"Path to configuration file (empty for built-in defaults)")
	fs.StringVar(&f.logLevel, "log-level", getEnvOrDefault(EnvLogLevel, ""),
		"Log level (debug, info, warn, error); overrides the configuration file")
	fs.StringVar(&f.logFormat, "log-format", getEnvOrDefault(EnvLogFormat, ""),
		"Log format (json, console); overrides the configuration file")
	fs.BoolVar(&f.showVersion, "version", false, "Show version information")

	err := fs.Parse(args)
	return f, err
}

// printVersion prints version information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "paybff version %s\n", version)
	fmt.Fprintf(w, "  Build time: %s\n", buildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", gitCommit)
}

// run loads configuration, builds the application and serves until a
// shutdown signal arrives.
func run(flags cliFlags) error {
	cfg, err := loadAndValidateConfig(flags.configPath)
	if err != nil {
		return err
	}

	logger, err := initLogger(flags, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting paybff",
		observability.String("version", version),
		observability.String("config", flags.configPath),
		observability.String("provider", cfg.Provider.BaseURL),
	)

	app, err := newApplication(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", observability.Error(err))
		return err
	}

	watcher := startConfigWatcher(app, flags, logger)
	return runUntilSignal(app, watcher, logger)
}

// loadAndValidateConfig loads and validates the configuration.
func loadAndValidateConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger builds the logger; flags and environment win over the file.
func initLogger(flags cliFlags, cfg *config.Config) (observability.Logger, error) {
	logCfg := observability.LogConfig{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
		Output: cfg.Observability.Logging.Output,
	}
	if flags.logLevel != "" {
		logCfg.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		logCfg.Format = flags.logFormat
	}

	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		return nil, err
	}
	observability.SetGlobalLogger(logger)
	return logger, nil
}
