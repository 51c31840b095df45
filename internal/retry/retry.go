package retry

import (
	"context"
	"time"

	"k8s.io/utils/clock"
)

// Default policy values.
const (
	DefaultMaxRetries  = 3
	DefaultBackoffBase = 2.0
	DefaultBackoffUnit = time.Second
	DefaultJitterMax   = 100 * time.Millisecond
)

// AttemptOutcome describes one finished attempt. Delay is the wait
// scheduled before the next attempt, zero when none follows.
type AttemptOutcome struct {
	Attempt int
	Delay   time.Duration
	Result  Result
	Err     error
}

// WaitFunc blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Policy configures Execute. The zero value is not usable; start from
// DefaultPolicy.
type Policy struct {
	// MaxRetries is the number of attempts after the first.
	MaxRetries int

	Backoff  Backoff
	Classify Classifier
	Wait     WaitFunc

	// OnAttempt, if set, is called synchronously after every attempt.
	OnAttempt func(AttemptOutcome)
}

// DefaultPolicy returns the policy used for provider calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		Backoff: ExponentialBackoff{
			Base:      DefaultBackoffBase,
			Unit:      DefaultBackoffUnit,
			JitterMax: DefaultJitterMax,
		},
		Classify: DefaultClassifier,
		Wait:     ClockWait(clock.RealClock{}),
	}
}

// ClockWait returns a WaitFunc driven by c.
func ClockWait(c clock.Clock) WaitFunc {
	return func(ctx context.Context, d time.Duration) error {
		if d <= 0 {
			return ctx.Err()
		}
		timer := c.NewTimer(d)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C():
			return nil
		}
	}
}

// Execute calls attempt until it succeeds, fails permanently, the retry
// budget is spent, or ctx is done. attempt receives the 1-based attempt
// number. The error of the last attempt is returned; if ctx ends the
// sequence, ctx.Err() is returned instead.
func Execute[T any](ctx context.Context, p Policy, attempt func(ctx context.Context, n int) (T, error)) (T, error) {
	var zero T

	classify := p.Classify
	if classify == nil {
		classify = DefaultClassifier
	}
	wait := p.Wait
	if wait == nil {
		wait = ClockWait(clock.RealClock{})
	}
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		value, err := attempt(ctx, n)
		if err == nil {
			p.report(AttemptOutcome{Attempt: n, Result: Success})
			return value, nil
		}

		result := classify(err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			p.report(AttemptOutcome{Attempt: n, Result: Canceled, Err: err})
			return zero, ctxErr
		}
		if !result.Retryable() || n > maxRetries {
			p.report(AttemptOutcome{Attempt: n, Result: result, Err: err})
			return zero, err
		}

		delay := time.Duration(0)
		if p.Backoff != nil {
			delay = p.Backoff.Next(n)
		}
		p.report(AttemptOutcome{Attempt: n, Delay: delay, Result: result, Err: err})

		if err := wait(ctx, delay); err != nil {
			return zero, err
		}
	}
}

func (p Policy) report(o AttemptOutcome) {
	if p.OnAttempt != nil {
		p.OnAttempt(o)
	}
}
