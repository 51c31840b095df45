package circuitbreaker

import (
	"errors"
	"sync/atomic"

	"github.com/sony/gobreaker"
)

// GoBreaker adapts gobreaker.TwoStepCircuitBreaker to Breaker.
//
// gobreaker has no notion of an ignored outcome, so Ignored is reported
// as success. It also reads the wall clock directly; Config.Clock is
// not used.
type GoBreaker struct {
	cb *gobreaker.TwoStepCircuitBreaker
}

// NewGoBreaker creates a gobreaker backed Breaker with a single
// half-open probe.
func NewGoBreaker(cfg Config) *GoBreaker {
	if cfg.Threshold < 1 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.BreakDuration <= 0 {
		cfg.BreakDuration = DefaultBreakDuration
	}
	threshold := uint32(cfg.Threshold) //nolint:gosec // validated positive

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     cfg.BreakDuration,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			cfg.OnStateChange(name, fromGoBreakerState(from), fromGoBreakerState(to))
		}
	}

	return &GoBreaker{cb: gobreaker.NewTwoStepCircuitBreaker(settings)}
}

// Name returns the breaker name.
func (b *GoBreaker) Name() string {
	return b.cb.Name()
}

// State returns the current state.
func (b *GoBreaker) State() State {
	return fromGoBreakerState(b.cb.State())
}

// Allow implements Breaker.
func (b *GoBreaker) Allow() (func(Outcome), error) {
	done, err := b.cb.Allow()
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}

	var once atomic.Bool
	return func(o Outcome) {
		if !once.CompareAndSwap(false, true) {
			return
		}
		done(o != Failure)
	}, nil
}

func fromGoBreakerState(s gobreaker.State) State {
	switch s {
	case gobreaker.StateOpen:
		return StateOpen
	case gobreaker.StateHalfOpen:
		return StateHalfOpen
	default:
		return StateClosed
	}
}
