// Package timeout bounds a single outbound attempt to a deadline.
package timeout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vyrodovalexey/paybff/internal/util"
)

// ErrTimeout is returned when an attempt does not finish within its
// deadline. It matches both util.ErrTimeout and context.DeadlineExceeded.
var ErrTimeout = &Error{}

// Error reports an attempt that exceeded its deadline.
type Error struct {
	Timeout time.Duration
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Timeout <= 0 {
		return "attempt timed out"
	}
	return fmt.Sprintf("attempt timed out after %s", e.Timeout)
}

// Is checks if the error matches the target.
func (e *Error) Is(target error) bool {
	if target == util.ErrTimeout || target == context.DeadlineExceeded {
		return true
	}
	_, ok := target.(*Error)
	return ok
}

// Unwrap returns context.DeadlineExceeded.
func (e *Error) Unwrap() error {
	return context.DeadlineExceeded
}

type result[T any] struct {
	value T
	err   error
}

// Run executes op once with a context derived from ctx that expires
// after d. A non-positive d runs op with ctx unchanged.
//
// When d elapses first the derived context is cancelled and a *Error is
// returned. When ctx is cancelled first its error is returned instead.
// op must honour its context; the goroutine running it exits as soon as
// op returns.
func Run[T any](ctx context.Context, d time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if d <= 0 {
		return op(ctx)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	// Buffered so the goroutine can always deliver and exit.
	done := make(chan result[T], 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result[T]{err: fmt.Errorf("attempt panicked: %v", rec)}
			}
		}()
		v, err := op(attemptCtx)
		done <- result[T]{value: v, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil || !isContextErr(r.err) {
			return r.value, r.err
		}
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, &Error{Timeout: d}
	case <-attemptCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, &Error{Timeout: d}
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// IsTimeout reports whether err is an attempt timeout.
func IsTimeout(err error) bool {
	var te *Error
	return errors.As(err, &te)
}
