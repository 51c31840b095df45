package retry

import (
	"math"
	"math/rand/v2"
	"time"
)

// Backoff defines the interface for backoff strategies.
type Backoff interface {
	// Next returns the wait before retry number n, starting at 1.
	Next(n int) time.Duration
}

// ExponentialBackoff waits Base^n units plus a uniform jitter in
// [0, JitterMax).
type ExponentialBackoff struct {
	Base      float64
	Unit      time.Duration
	JitterMax time.Duration

	// Jitter returns a value in [0, max). Nil uses math/rand/v2.
	Jitter func(max time.Duration) time.Duration
}

// Next implements Backoff.
func (b ExponentialBackoff) Next(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	base := b.Base
	if base <= 0 {
		base = DefaultBackoffBase
	}
	unit := b.Unit
	if unit <= 0 {
		unit = time.Second
	}

	delay := time.Duration(math.Pow(base, float64(n)) * float64(unit))
	return delay + b.jitter()
}

// Bounds returns the inclusive lower and exclusive upper bound of the
// wait before retry n.
func (b ExponentialBackoff) Bounds(n int) (time.Duration, time.Duration) {
	lower := ExponentialBackoff{Base: b.Base, Unit: b.Unit}.Next(n)
	return lower, lower + b.JitterMax
}

func (b ExponentialBackoff) jitter() time.Duration {
	if b.JitterMax <= 0 {
		return 0
	}
	if b.Jitter != nil {
		return b.Jitter(b.JitterMax)
	}
	return time.Duration(rand.Int64N(int64(b.JitterMax)))
}

// ConstantBackoff waits the same interval before every retry.
type ConstantBackoff struct {
	Interval time.Duration
}

// Next implements Backoff.
func (b ConstantBackoff) Next(int) time.Duration {
	return b.Interval
}
