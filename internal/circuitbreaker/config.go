// Package circuitbreaker gates calls to the payment provider.
//
// A breaker starts closed. After Threshold consecutive failures it opens
// and rejects every call with ErrCircuitOpen. Once BreakDuration has
// passed, the next call is admitted as a single half-open probe; its
// outcome either closes the breaker again or re-opens it.
//
// Two engines implement Breaker: the native state machine in this
// package and an adapter over sony/gobreaker's two-step breaker.
package circuitbreaker

import (
	"fmt"
	"time"

	"k8s.io/utils/clock"
)

// Engine names accepted in configuration.
const (
	EngineNative    = "native"
	EngineGoBreaker = "gobreaker"
)

// Default configuration values.
const (
	DefaultThreshold     = 5
	DefaultBreakDuration = 60 * time.Second
)

// Config holds configuration for a circuit breaker.
type Config struct {
	// Name identifies the breaker in logs and metrics.
	Name string

	// Threshold is the number of consecutive failures that opens the circuit.
	Threshold int

	// BreakDuration is how long the circuit stays open before a probe.
	BreakDuration time.Duration

	// Engine selects the implementation, EngineNative when empty.
	Engine string

	// Clock drives the native engine. Nil means the real clock.
	Clock clock.PassiveClock

	// OnStateChange is called after every transition, outside the lock.
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Name:          "payment-provider",
		Threshold:     DefaultThreshold,
		BreakDuration: DefaultBreakDuration,
		Engine:        EngineNative,
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.Threshold < 1 {
		return fmt.Errorf("threshold must be at least 1, got %d", c.Threshold)
	}
	if c.BreakDuration <= 0 {
		return fmt.Errorf("break duration must be positive, got %s", c.BreakDuration)
	}
	switch c.Engine {
	case "", EngineNative, EngineGoBreaker:
	default:
		return fmt.Errorf("unknown breaker engine %q", c.Engine)
	}
	return nil
}

// New builds the breaker selected by cfg.Engine.
func New(cfg Config) (Breaker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Engine == EngineGoBreaker {
		return NewGoBreaker(cfg), nil
	}
	return NewCircuitBreaker(cfg), nil
}
