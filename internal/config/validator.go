package config

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/paybff/internal/util"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Is reports whether target is util.ErrConfigInvalid.
func (e ValidationErrors) Is(target error) bool {
	return target == util.ErrConfigInvalid
}

// ValidateConfig validates a configuration and returns every problem found.
func ValidateConfig(cfg *Config) error {
	v := &validator{}
	if cfg == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	v.validateServer(&cfg.Server)
	v.validateProvider(&cfg.Provider)
	v.validateResilience(&cfg.Resilience)
	v.validateObservability(&cfg.Observability)
	v.validateRateLimit(&cfg.RateLimit)

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

type validator struct {
	errors ValidationErrors
}

func (v *validator) addError(path, message string) {
	v.errors = append(v.errors, ValidationError{Path: path, Message: message})
}

func (v *validator) validateServer(s *ServerConfig) {
	if err := util.ValidatePort(s.Port); err != nil {
		v.addError("server.port", err.Error())
	}
	timeouts := []struct {
		path string
		d    Duration
	}{
		{"server.readTimeout", s.ReadTimeout},
		{"server.writeTimeout", s.WriteTimeout},
		{"server.idleTimeout", s.IdleTimeout},
		{"server.shutdownTimeout", s.ShutdownTimeout},
	}
	for _, t := range timeouts {
		if t.d < 0 {
			v.addError(t.path, "must not be negative")
		}
	}
}

func (v *validator) validateProvider(p *ProviderConfig) {
	if err := util.ValidateURL(p.BaseURL); err != nil {
		v.addError("provider.baseURL", err.Error())
	}
	if p.HealthPath != "" && !strings.HasPrefix(p.HealthPath, "/") {
		v.addError("provider.healthPath", "must start with /")
	}
	if err := util.ValidatePositiveDuration(p.HealthTimeout.Duration()); err != nil {
		v.addError("provider.healthTimeout", err.Error())
	}
}

func (v *validator) validateResilience(r *ResilienceConfig) {
	const path = "resilience"

	if r.RetryAttempts < 0 {
		v.addError(path+".retryAttempts", "must not be negative")
	}
	if r.PerAttemptTimeoutMs <= 0 {
		v.addError(path+".perAttemptTimeoutMs", "must be positive")
	}
	if r.BreakerThreshold < 1 {
		v.addError(path+".breakerThreshold", "must be at least 1")
	}
	if r.BreakDurationMs <= 0 {
		v.addError(path+".breakDurationMs", "must be positive")
	}
	if r.BackoffBaseSeconds < 1 {
		v.addError(path+".backoffBaseSeconds", "must be at least 1")
	}
	if r.JitterMaxMs < 0 {
		v.addError(path+".jitterMaxMs", "must not be negative")
	}
	switch r.BreakerEngine {
	case "", "native", "gobreaker":
	default:
		v.addError(path+".breakerEngine", fmt.Sprintf("unknown engine %q, want native or gobreaker", r.BreakerEngine))
	}
}

func (v *validator) validateObservability(o *ObservabilityConfig) {
	switch strings.ToLower(o.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		v.addError("observability.logging.level", fmt.Sprintf("unknown level %q", o.Logging.Level))
	}
	switch o.Logging.Format {
	case "", "json", "console":
	default:
		v.addError("observability.logging.format", "must be json or console")
	}

	if o.Metrics.Enabled && !strings.HasPrefix(o.Metrics.Path, "/") {
		v.addError("observability.metrics.path", "must start with /")
	}

	if o.Tracing.SamplingRate < 0 || o.Tracing.SamplingRate > 1 {
		v.addError("observability.tracing.samplingRate", "must be between 0 and 1")
	}
	if o.Tracing.Enabled {
		if err := util.ValidateNonEmpty(o.Tracing.OTLPEndpoint, "otlpEndpoint"); err != nil {
			v.addError("observability.tracing.otlpEndpoint", err.Error())
		}
	}
}

func (v *validator) validateRateLimit(r *RateLimitConfig) {
	if !r.Enabled {
		return
	}
	if r.RequestsPerSecond <= 0 {
		v.addError("rateLimit.requestsPerSecond", "must be positive")
	}
	if r.Burst <= 0 {
		v.addError("rateLimit.burst", "must be positive")
	}
}
