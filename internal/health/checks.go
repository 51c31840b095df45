package health

import (
	"context"
	"fmt"
	"net/http"
)

// ProviderPinger probes the provider's health endpoint.
type ProviderPinger interface {
	Health(ctx context.Context) (int, error)
}

// CheckFunc adapts a function to Check.
type CheckFunc struct {
	name string
	fn   func(ctx context.Context) Result
}

// NewCheckFunc creates a named check from fn.
func NewCheckFunc(name string, fn func(ctx context.Context) Result) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

// Name returns the check name.
func (c *CheckFunc) Name() string {
	return c.name
}

// Check runs the check.
func (c *CheckFunc) Check(ctx context.Context) Result {
	return c.fn(ctx)
}

// ProviderCheck reports Healthy on a 2xx answer, Degraded on any other
// status and Unhealthy when the provider cannot be reached.
func ProviderCheck(p ProviderPinger) Check {
	return NewCheckFunc("provider", func(ctx context.Context) Result {
		code, err := p.Health(ctx)
		if err != nil {
			return Result{
				Status:      StatusUnhealthy,
				Description: "Provider is not responding",
				Err:         err,
			}
		}
		if code < 200 || code >= 300 {
			return Result{
				Status:      StatusDegraded,
				Description: fmt.Sprintf("Provider returned status: %d %s", code, http.StatusText(code)),
			}
		}
		return Result{Status: StatusHealthy, Description: "Provider is responding"}
	})
}
