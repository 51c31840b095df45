package main

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vyrodovalexey/paybff/internal/circuitbreaker"
	"github.com/vyrodovalexey/paybff/internal/config"
	"github.com/vyrodovalexey/paybff/internal/observability"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("paybff", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")

	f, err := parseFlags(newFlagSet(), nil)
	require.NoError(t, err)
	assert.Equal(t, "configs/bff.yaml", f.configPath)
	assert.Empty(t, f.logLevel)
	assert.Empty(t, f.logFormat)
	assert.False(t, f.showVersion)
}

func TestParseFlags_EnvThenFlags(t *testing.T) {
	t.Setenv(EnvConfigPath, "/etc/paybff/bff.yaml")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "console")

	f, err := parseFlags(newFlagSet(), nil)
	require.NoError(t, err)
	assert.Equal(t, "/etc/paybff/bff.yaml", f.configPath)
	assert.Equal(t, "warn", f.logLevel)
	assert.Equal(t, "console", f.logFormat)

	f, err = parseFlags(newFlagSet(), []string{"-log-level", "debug", "-config", "", "-version"})
	require.NoError(t, err)
	assert.Equal(t, "debug", f.logLevel)
	assert.Empty(t, f.configPath)
	assert.True(t, f.showVersion)
}

func TestParseFlags_Unknown(t *testing.T) {
	_, err := parseFlags(newFlagSet(), []string{"-nope"})
	assert.Error(t, err)
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf)
	assert.Contains(t, buf.String(), "paybff version dev")
	assert.Contains(t, buf.String(), "Git commit")
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Parallel()

	cfg, err := loadAndValidateConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultHTTPPort, cfg.Server.Port)

	path := filepath.Join(t.TempDir(), "bff.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resilience:\n  breakerThreshold: 0\n"), 0o600))
	_, err = loadAndValidateConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, err = loadAndValidateConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestInitLogger_FlagsOverrideFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Observability.Logging.Level = "error"

	logger, err := initLogger(cliFlags{}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "error", logger.Level())

	logger, err = initLogger(cliFlags{logLevel: "debug"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "debug", logger.Level())

	_, err = initLogger(cliFlags{logFormat: "xml"}, cfg)
	assert.Error(t, err)
}

func TestNewApplication(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{name: "gobreaker engine", mutate: func(c *config.Config) { c.Resilience.BreakerEngine = circuitbreaker.EngineGoBreaker }},
		{
			name: "rate limited",
			mutate: func(c *config.Config) {
				c.RateLimit.Enabled = true
				c.RateLimit.PerClient = true
			},
		},
		{name: "metrics disabled", mutate: func(c *config.Config) { c.Observability.Metrics.Enabled = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			tt.mutate(cfg)

			app, err := newApplication(cfg, observability.NopLogger())
			require.NoError(t, err)
			defer app.rateLimiter.Stop()

			assert.NotNil(t, app.server)
			assert.NotNil(t, app.gateway)
			assert.Equal(t, circuitbreaker.StateClosed, app.breaker.State())
			assert.Equal(t, cfg.RateLimit.Enabled, app.rateLimiter != nil)
		})
	}
}

func TestRetryPolicy(t *testing.T) {
	t.Parallel()

	r := config.DefaultConfig().Resilience
	r.RetryAttempts = 5
	r.JitterMaxMs = 0

	p := retryPolicy(r)
	assert.Equal(t, 5, p.MaxRetries)
	assert.Equal(t, 2*time.Second, p.Backoff.Next(1))
	assert.Equal(t, 4*time.Second, p.Backoff.Next(2))
}

func TestNewBreaker_LogsTransitions(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := observability.NewLoggerFromZap(zap.New(core))

	r := config.DefaultConfig().Resilience
	r.BreakerThreshold = 1

	breaker, err := newBreaker(r, observability.NewMetrics("brtest"), logger)
	require.NoError(t, err)

	done, err := breaker.Allow()
	require.NoError(t, err)
	done(circuitbreaker.Failure)

	assert.Equal(t, circuitbreaker.StateOpen, breaker.State())
	assert.Equal(t, 1, logs.FilterMessage("circuit breaker opened").Len())
}

func TestReloadHandler(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := observability.NewLoggerFromZap(zap.New(core))
	require.NoError(t, logger.SetLevel("info"))

	app := &application{config: config.DefaultConfig()}

	next := config.DefaultConfig()
	next.Observability.Logging.Level = "debug"
	next.Resilience.RetryAttempts = 7

	reloadHandler(app, cliFlags{}, logger)(next)
	assert.Equal(t, "debug", logger.Level())
	assert.Equal(t, 1, logs.FilterMessage("resilience settings changed; restart to apply them").Len())
	assert.Equal(t, 3, app.config.Resilience.RetryAttempts)

	next.Observability.Logging.Level = "error"
	reloadHandler(app, cliFlags{logLevel: "debug"}, logger)(next)
	assert.Equal(t, "debug", logger.Level(), "a pinned level is not overridden")
}
