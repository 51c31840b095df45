package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vyrodovalexey/paybff/internal/correlation"
	"github.com/vyrodovalexey/paybff/internal/observability"
	"github.com/vyrodovalexey/paybff/internal/provider"
)

// Credentials accepted by the mock.
const (
	MockUser     = "test@example.com"
	MockPassword = "password123"
	MockToken    = "mock-jwt-token-12345"
	tokenTTL     = time.Hour
)

// Faults controls injected latency and failures.
type Faults struct {
	FailureRate   float64
	FailureStatus int
	LatencyMin    time.Duration
	LatencyMax    time.Duration
}

// Validate checks the fault settings.
func (f Faults) Validate() error {
	if f.FailureRate < 0 || f.FailureRate > 1 {
		return fmt.Errorf("failure rate must be between 0 and 1, got %v", f.FailureRate)
	}
	if f.FailureStatus < 400 || f.FailureStatus > 599 {
		return fmt.Errorf("failure status must be 4xx or 5xx, got %d", f.FailureStatus)
	}
	if f.LatencyMin < 0 || f.LatencyMax < f.LatencyMin {
		return fmt.Errorf("invalid latency range [%s, %s]", f.LatencyMin, f.LatencyMax)
	}
	return nil
}

// Provider is the mock provider.
type Provider struct {
	faults Faults
	logger observability.Logger
	now    func() time.Time

	// float returns a value in [0, 1).
	float func() float64
}

// NewProvider creates a mock provider.
func NewProvider(faults Faults, logger observability.Logger) *Provider {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Provider{faults: faults, logger: logger, now: time.Now, float: rand.Float64}
}

// Router returns the gin engine serving the provider API.
func (p *Provider) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(provider.DefaultHealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("", p.inject)
	api.POST(provider.AuthenticatePath, p.authenticate)
	api.POST(provider.PayPath, p.pay)
	return r
}

// inject applies simulated latency and failures.
func (p *Provider) inject(c *gin.Context) {
	if err := p.sleep(c.Request.Context()); err != nil {
		c.Abort()
		return
	}

	if p.faults.FailureRate > 0 && p.float() < p.faults.FailureRate {
		p.logger.Info("injecting failure",
			observability.String("path", c.Request.URL.Path),
			observability.Int("status", p.faults.FailureStatus),
			observability.String(observability.FieldCorrelationID, c.GetHeader(correlation.Header)),
		)
		c.AbortWithStatusJSON(p.faults.FailureStatus, gin.H{"error": "injected failure"})
		return
	}
	c.Next()
}

func (p *Provider) sleep(ctx context.Context) error {
	d := p.faults.LatencyMin
	if spread := p.faults.LatencyMax - p.faults.LatencyMin; spread > 0 {
		d += time.Duration(p.float() * float64(spread))
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Provider) authenticate(c *gin.Context) {
	var req provider.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	res := provider.AuthResult{Success: req.User == MockUser && req.Password == MockPassword}
	if req.User == MockUser {
		token := MockToken
		expires := p.now().UTC().Add(tokenTTL)
		res.Token = &token
		res.ExpiresAt = &expires
	}
	c.JSON(http.StatusOK, res)
}

func (p *Provider) pay(c *gin.Context) {
	var req provider.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	id := "PAY_" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	ref := fmt.Sprintf("REF_%06d", 100000+int(p.float()*900000))
	ts := p.now().UTC()

	c.JSON(http.StatusOK, provider.PaymentResult{
		Success:     req.Amount > 0 && req.Destination != "",
		PaymentID:   &id,
		Reference:   &ref,
		ProcessedAt: &ts,
	})
}
