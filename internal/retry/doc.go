// Package retry repeats a provider attempt on transient failure with
// exponential backoff and jitter.
//
// The delay before retry n (n = 1..MaxRetries) is
//
//	Base^n * Unit + rand[0, JitterMax)
//
// so the defaults (Base 2, Unit 1s, JitterMax 100ms, MaxRetries 3) give
// four attempts in total with waits of roughly 2s, 4s and 8s.
//
// # Usage
//
//	policy := retry.DefaultPolicy()
//	policy.OnAttempt = func(o retry.AttemptOutcome) {
//	    logger.Info("attempt", observability.Int("attempt", o.Attempt))
//	}
//	res, err := retry.Execute(ctx, policy, func(ctx context.Context, n int) (*Result, error) {
//	    return timeout.Run(ctx, 5*time.Second, call)
//	})
//
// Classification decides what happens after a failed attempt:
// permanent failures return at once, transient failures and timeouts
// are retried while budget remains, and cancellation of the caller's
// context stops everything.
package retry
