package retry

import (
	"context"
	"errors"

	"github.com/vyrodovalexey/paybff/internal/timeout"
	"github.com/vyrodovalexey/paybff/internal/util"
)

// Result classifies a single attempt.
type Result int

const (
	// Success means the attempt produced a response.
	Success Result = iota
	// TransientFailure may succeed if tried again.
	TransientFailure
	// PermanentFailure will fail the same way on every attempt.
	PermanentFailure
	// TimedOut means the attempt exceeded its deadline. It is retried.
	TimedOut
	// Canceled means the caller gave up. Nothing further is attempted.
	Canceled
)

// String returns the metric label for r.
func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case TransientFailure:
		return "transient_failure"
	case PermanentFailure:
		return "permanent_failure"
	case TimedOut:
		return "timed_out"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Retryable reports whether another attempt may follow r.
func (r Result) Retryable() bool {
	return r == TransientFailure || r == TimedOut
}

// Classifier maps an attempt error to a Result. It is only called with
// a non-nil error.
type Classifier func(err error) Result

// DefaultClassifier treats attempt timeouts as TimedOut, errors matching
// util.ErrPermanent as permanent, context cancellation as Canceled and
// everything else, network errors included, as transient.
func DefaultClassifier(err error) Result {
	switch {
	case err == nil:
		return Success
	case timeout.IsTimeout(err):
		return TimedOut
	case util.IsPermanent(err):
		return PermanentFailure
	case errors.Is(err, context.Canceled):
		return Canceled
	default:
		return TransientFailure
	}
}
