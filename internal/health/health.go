// Package health provides liveness and readiness probe endpoints.
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/paybff/internal/observability"
)

// Status represents the health status.
type Status string

const (
	// StatusHealthy indicates the check passed.
	StatusHealthy Status = "Healthy"
	// StatusDegraded indicates the dependency answered but not successfully.
	StatusDegraded Status = "Degraded"
	// StatusUnhealthy indicates the dependency could not be reached.
	StatusUnhealthy Status = "Unhealthy"
)

// severity orders statuses so the worst one wins.
func (s Status) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// DefaultCheckTimeout bounds each readiness check.
const DefaultCheckTimeout = 2 * time.Second

// Result is the outcome of one check.
type Result struct {
	Status      Status
	Description string
	Err         error
}

// Check is a named health check.
type Check interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckReport is one entry of a Report.
type CheckReport struct {
	Name        string  `json:"name"`
	Status      Status  `json:"status"`
	Description string  `json:"description,omitempty"`
	Duration    float64 `json:"duration"`
}

// Report is the probe response body. Durations are in milliseconds.
type Report struct {
	Status        Status        `json:"status"`
	Checks        []CheckReport `json:"checks"`
	TotalDuration float64       `json:"totalDuration"`
}

// Checker runs readiness checks.
type Checker struct {
	mu      sync.RWMutex
	checks  []Check
	timeout time.Duration
	logger  observability.Logger
}

// NewChecker creates a checker. A non-positive timeout uses
// DefaultCheckTimeout.
func NewChecker(timeout time.Duration, logger observability.Logger) *Checker {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Checker{timeout: timeout, logger: logger}
}

// Register adds a readiness check.
func (c *Checker) Register(check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, check)
}

// Liveness reports that the process is serving.
func (c *Checker) Liveness() Report {
	return Report{
		Status: StatusHealthy,
		Checks: []CheckReport{{Name: "live", Status: StatusHealthy}},
	}
}

// Readiness runs every registered check and reports the worst status.
func (c *Checker) Readiness(ctx context.Context) Report {
	c.mu.RLock()
	checks := append([]Check(nil), c.checks...)
	c.mu.RUnlock()

	start := time.Now()
	report := Report{Status: StatusHealthy, Checks: make([]CheckReport, 0, len(checks))}

	for _, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		checkStart := time.Now()
		result := check.Check(checkCtx)
		elapsed := time.Since(checkStart)
		cancel()

		if result.Status != StatusHealthy {
			fields := []observability.Field{
				observability.String("check", check.Name()),
				observability.String("status", string(result.Status)),
			}
			if result.Err != nil {
				fields = append(fields, observability.Error(result.Err))
			}
			c.logger.WithContext(ctx).Warn("readiness check not healthy", fields...)
		}

		report.Checks = append(report.Checks, CheckReport{
			Name:        check.Name(),
			Status:      result.Status,
			Description: result.Description,
			Duration:    millis(elapsed),
		})
		if result.Status.severity() > report.Status.severity() {
			report.Status = result.Status
		}
	}

	report.TotalDuration = millis(time.Since(start))
	return report
}

// LivenessHandler returns a gin handler for the liveness endpoint.
func (c *Checker) LivenessHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, c.Liveness())
	}
}

// ReadinessHandler returns a gin handler for the readiness endpoint.
// Unhealthy maps to 503; Healthy and Degraded to 200.
func (c *Checker) ReadinessHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		report := c.Readiness(ctx.Request.Context())

		status := http.StatusOK
		if report.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		ctx.JSON(status, report)
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
