// Package gateway makes resilient calls to the payment provider.
//
// Every operation runs through the same pipeline, outermost first:
//
//	circuit breaker -> retry with backoff -> per-attempt timeout -> provider
//
// The breaker admits or rejects the whole attempt sequence and receives
// exactly one outcome for it. An answered request counts as success
// even when the provider rejected it, because the provider was
// reachable. Exhausting the transient retry budget counts as a failure.
// A cancelled caller is reported as ignored.
package gateway

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/paybff/internal/circuitbreaker"
	"github.com/vyrodovalexey/paybff/internal/correlation"
	"github.com/vyrodovalexey/paybff/internal/observability"
	"github.com/vyrodovalexey/paybff/internal/provider"
	"github.com/vyrodovalexey/paybff/internal/retry"
	"github.com/vyrodovalexey/paybff/internal/timeout"
	"github.com/vyrodovalexey/paybff/internal/util"
)

// DefaultAttemptTimeout bounds a single provider attempt.
const DefaultAttemptTimeout = 5 * time.Second

// ProviderClient performs single attempts against the provider.
type ProviderClient interface {
	Authenticate(ctx context.Context, req provider.AuthRequest, correlationID string) (*provider.AuthResult, error)
	Pay(ctx context.Context, req provider.PaymentRequest, bearerToken, correlationID string) (*provider.PaymentResult, error)
}

// Gateway wraps a ProviderClient with breaker, retry and timeout.
// It is safe for concurrent use.
type Gateway struct {
	client         ProviderClient
	breaker        circuitbreaker.Breaker
	policy         retry.Policy
	attemptTimeout time.Duration
	logger         observability.Logger
	metrics        *observability.Metrics
	tracer         *observability.Tracer
}

// Option is a functional option for configuring the gateway.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = metrics
	}
}

// WithTracer sets the tracer used for provider call spans.
func WithTracer(tracer *observability.Tracer) Option {
	return func(g *Gateway) {
		g.tracer = tracer
	}
}

// WithBreaker sets the circuit breaker shared by all operations.
func WithBreaker(breaker circuitbreaker.Breaker) Option {
	return func(g *Gateway) {
		g.breaker = breaker
	}
}

// WithRetryPolicy sets the retry policy.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(g *Gateway) {
		g.policy = policy
	}
}

// WithAttemptTimeout sets the per-attempt timeout.
func WithAttemptTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.attemptTimeout = d
	}
}

// New creates a gateway around client.
func New(client ProviderClient, opts ...Option) (*Gateway, error) {
	if client == nil {
		return nil, errors.New("provider client is required")
	}

	g := &Gateway{
		client:         client,
		policy:         retry.DefaultPolicy(),
		attemptTimeout: DefaultAttemptTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.breaker == nil {
		g.breaker = circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig())
	}
	if g.logger == nil {
		g.logger = observability.NopLogger()
	}
	if g.tracer == nil {
		g.tracer = observability.NoopTracer("paybff")
	}

	return g, nil
}

// Breaker returns the shared circuit breaker.
func (g *Gateway) Breaker() circuitbreaker.Breaker {
	return g.breaker
}

// Authenticate asks the provider to authenticate a user.
func (g *Gateway) Authenticate(
	ctx context.Context,
	req provider.AuthRequest,
	correlationID string,
) (*provider.AuthResult, error) {
	ctx, correlationID = withCorrelation(ctx, correlationID)
	return call(ctx, g, provider.OpAuthenticate, correlationID,
		func(ctx context.Context) (*provider.AuthResult, error) {
			return g.client.Authenticate(ctx, req, correlationID)
		})
}

// Pay asks the provider to execute a payment.
func (g *Gateway) Pay(
	ctx context.Context,
	req provider.PaymentRequest,
	bearerToken, correlationID string,
) (*provider.PaymentResult, error) {
	ctx, correlationID = withCorrelation(ctx, correlationID)
	return call(ctx, g, provider.OpPay, correlationID,
		func(ctx context.Context) (*provider.PaymentResult, error) {
			return g.client.Pay(ctx, req, bearerToken, correlationID)
		})
}

func withCorrelation(ctx context.Context, id string) (context.Context, string) {
	if id == "" {
		return correlation.Ensure(ctx)
	}
	if correlation.FromContext(ctx) != id {
		ctx = correlation.WithID(ctx, id)
	}
	return ctx, id
}

func call[T any](
	ctx context.Context,
	g *Gateway,
	op, correlationID string,
	attempt func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	start := time.Now()

	ctx, span := g.tracer.StartSpan(ctx, "provider."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider.operation", op),
			attribute.String("correlation.id", correlationID),
		),
	)
	defer span.End()

	logger := g.logger.WithContext(ctx).With(observability.String("operation", op))

	done, err := g.breaker.Allow()
	if err != nil {
		g.metrics.RecordCircuitRejection(g.breaker.Name())
		g.metrics.RecordProviderCall(op, KindCircuitOpen.String(), time.Since(start))
		logger.Warn("circuit breaker open, provider call rejected",
			observability.String("breaker", g.breaker.Name()),
		)
		gErr := &Error{Kind: KindCircuitOpen, Op: op, Cause: err}
		span.RecordError(gErr)
		span.SetStatus(codes.Error, gErr.Kind.String())
		return zero, gErr
	}

	attempts := 0
	policy := g.policy
	hook := policy.OnAttempt
	policy.OnAttempt = func(o retry.AttemptOutcome) {
		g.metrics.RecordProviderAttempt(op, o.Result.String())
		switch {
		case o.Result == retry.Success:
		case o.Delay > 0:
			g.metrics.RecordProviderRetry(op)
			logger.Warn("provider attempt failed, retrying",
				observability.Int("attempt", o.Attempt),
				observability.String("result", o.Result.String()),
				observability.Duration("delay", o.Delay),
				observability.Error(o.Err),
			)
		default:
			logger.Warn("provider attempt failed",
				observability.Int("attempt", o.Attempt),
				observability.String("result", o.Result.String()),
				observability.Error(o.Err),
			)
		}
		if hook != nil {
			hook(o)
		}
	}

	value, err := retry.Execute(ctx, policy, func(ctx context.Context, n int) (T, error) {
		attempts = n
		return timeout.Run(ctx, g.attemptTimeout, attempt)
	})

	span.SetAttributes(attribute.Int("provider.attempts", attempts))
	defer func() {
		g.metrics.SetCircuitBreakerState(g.breaker.Name(), int(g.breaker.State()))
	}()

	if err == nil {
		done(circuitbreaker.Success)
		g.metrics.RecordProviderCall(op, "success", time.Since(start))
		logger.Debug("provider call succeeded", observability.Int("attempts", attempts))
		return value, nil
	}

	gErr := &Error{Op: op, Attempts: attempts, Cause: err}
	switch {
	case ctx.Err() != nil:
		gErr.Kind = KindCanceled
		done(circuitbreaker.Ignored)
	case util.IsPermanent(err):
		gErr.Kind = KindPermanent
		done(circuitbreaker.Success)
	default:
		gErr.Kind = KindTransient
		done(circuitbreaker.Failure)
	}

	g.metrics.RecordProviderCall(op, gErr.Kind.String(), time.Since(start))
	span.RecordError(gErr)
	span.SetStatus(codes.Error, gErr.Kind.String())
	return zero, gErr
}
