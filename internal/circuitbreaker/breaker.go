package circuitbreaker

import (
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"

	"github.com/vyrodovalexey/paybff/internal/util"
)

// State represents the state of a circuit breaker.
type State int

const (
	// StateClosed indicates the circuit is closed and requests are allowed.
	StateClosed State = iota

	// StateHalfOpen indicates a single probe is testing the provider.
	StateHalfOpen

	// StateOpen indicates the circuit is open and requests are rejected.
	StateOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Outcome is reported once for every admitted call.
type Outcome int

const (
	// Success means the provider answered.
	Success Outcome = iota
	// Failure means the provider could not be reached within budget.
	Failure
	// Ignored means the caller gave up; the provider's health is unknown.
	Ignored
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when the circuit breaker rejects a call.
var ErrCircuitOpen = util.ErrCircuitOpen

// Breaker admits or rejects calls to a dependency.
type Breaker interface {
	// Allow admits a call or returns ErrCircuitOpen. The returned done
	// must be called exactly once with the call's outcome; later calls
	// are no-ops.
	Allow() (done func(Outcome), err error)

	// State returns the current state.
	State() State

	// Name returns the breaker name.
	Name() string
}

// CircuitBreaker is the native Breaker. All transitions happen under mu.
type CircuitBreaker struct {
	name          string
	threshold     int
	breakDuration time.Duration
	clock         clock.PassiveClock
	onStateChange func(name string, from, to State)

	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	openedAt            time.Time
	probeInFlight       bool
	// generation changes on every transition so completions admitted in
	// an earlier state are discarded.
	generation uint64
}

// NewCircuitBreaker creates a native circuit breaker. Zero values in cfg
// fall back to the defaults.
func NewCircuitBreaker(cfg Config) *CircuitBreaker {
	if cfg.Threshold < 1 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.BreakDuration <= 0 {
		cfg.BreakDuration = DefaultBreakDuration
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}

	return &CircuitBreaker{
		name:          cfg.Name,
		threshold:     cfg.Threshold,
		breakDuration: cfg.BreakDuration,
		clock:         cfg.Clock,
		onStateChange: cfg.OnStateChange,
		state:         StateClosed,
	}
}

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// ConsecutiveFailures returns the current failure streak.
func (cb *CircuitBreaker) ConsecutiveFailures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.consecutiveFailures
}

// Allow implements Breaker.
func (cb *CircuitBreaker) Allow() (func(Outcome), error) {
	cb.mu.Lock()

	var from State
	transitioned := false

	switch cb.state {
	case StateClosed:
	case StateOpen:
		if cb.clock.Since(cb.openedAt) < cb.breakDuration {
			cb.mu.Unlock()
			return nil, ErrCircuitOpen
		}
		from = cb.setState(StateHalfOpen)
		transitioned = true
		cb.probeInFlight = true
	case StateHalfOpen:
		if cb.probeInFlight {
			cb.mu.Unlock()
			return nil, ErrCircuitOpen
		}
		cb.probeInFlight = true
	}

	gen := cb.generation
	cb.mu.Unlock()

	if transitioned {
		cb.notify(from, StateHalfOpen)
	}
	return cb.doneFunc(gen), nil
}

func (cb *CircuitBreaker) doneFunc(gen uint64) func(Outcome) {
	var once atomic.Bool
	return func(o Outcome) {
		if !once.CompareAndSwap(false, true) {
			return
		}
		cb.complete(gen, o)
	}
}

func (cb *CircuitBreaker) complete(gen uint64, o Outcome) {
	cb.mu.Lock()
	if gen != cb.generation {
		cb.mu.Unlock()
		return
	}

	var from, to State
	transitioned := false

	switch cb.state {
	case StateClosed:
		switch o {
		case Success:
			cb.consecutiveFailures = 0
		case Failure:
			cb.consecutiveFailures++
			if cb.consecutiveFailures >= cb.threshold {
				from, to, transitioned = cb.trip(), StateOpen, true
			}
		}
	case StateHalfOpen:
		switch o {
		case Success:
			cb.consecutiveFailures = 0
			cb.probeInFlight = false
			from, to, transitioned = cb.setState(StateClosed), StateClosed, true
		case Failure:
			from, to, transitioned = cb.trip(), StateOpen, true
		case Ignored:
			cb.probeInFlight = false
		}
	}
	cb.mu.Unlock()

	if transitioned {
		cb.notify(from, to)
	}
}

// trip opens the circuit. Caller holds mu.
func (cb *CircuitBreaker) trip() State {
	cb.openedAt = cb.clock.Now()
	cb.probeInFlight = false
	return cb.setState(StateOpen)
}

// setState records a transition and returns the previous state. Caller
// holds mu.
func (cb *CircuitBreaker) setState(to State) State {
	from := cb.state
	cb.state = to
	cb.generation++
	return from
}

func (cb *CircuitBreaker) notify(from, to State) {
	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, from, to)
	}
}
