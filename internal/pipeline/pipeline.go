package pipeline

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/vyrodovalexey/paybff/internal/correlation"
	"github.com/vyrodovalexey/paybff/internal/gateway"
	"github.com/vyrodovalexey/paybff/internal/observability"
	"github.com/vyrodovalexey/paybff/internal/provider"
)

// Gateway is the resilient provider surface the pipeline depends on.
type Gateway interface {
	Authenticate(ctx context.Context, req provider.AuthRequest, correlationID string) (*provider.AuthResult, error)
	Pay(ctx context.Context, req provider.PaymentRequest, bearerToken, correlationID string) (*provider.PaymentResult, error)
}

// Pipeline executes login and payment commands.
type Pipeline struct {
	gateway  Gateway
	validate *validator.Validate
	logger   observability.Logger
}

// New creates a pipeline.
func New(gw Gateway, logger observability.Logger) *Pipeline {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Pipeline{
		gateway:  gw,
		validate: newValidator(),
		logger:   logger,
	}
}

// Login validates cmd and authenticates it against the provider.
func (p *Pipeline) Login(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	if err := validate(p.validate, "login request is invalid", cmd); err != nil {
		return nil, err
	}

	ctx, correlationID := correlation.Ensure(ctx)
	logger := p.logger.WithContext(ctx).With(observability.String("username", cmd.Username))
	logger.Info("processing login")

	res, err := p.gateway.Authenticate(ctx, authRequest(cmd), correlationID)
	if err != nil {
		if !absorb(logger, "login failed", err) {
			return nil, err
		}
		return &LoginResult{IsSuccess: false}, nil
	}

	logger.Info("login processed", observability.Bool("success", res.Success))
	return loginResult(res), nil
}

// CreatePayment validates cmd and submits it to the provider.
func (p *Pipeline) CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (*PaymentResult, error) {
	if err := validate(p.validate, "payment request is invalid", cmd); err != nil {
		return nil, err
	}

	ctx, correlationID := correlation.Ensure(ctx)
	logger := p.logger.WithContext(ctx).With(
		observability.Float64("amount", cmd.Amount),
		observability.String("currency", cmd.Currency),
	)
	logger.Info("processing payment")

	res, err := p.gateway.Pay(ctx, paymentRequest(cmd), cmd.BearerToken, correlationID)
	if err != nil {
		if !absorb(logger, "payment failed", err) {
			return nil, err
		}
		return &PaymentResult{IsSuccess: false}, nil
	}

	logger.Info("payment processed", observability.Bool("success", res.Success))
	return paymentResult(res), nil
}

func authRequest(cmd LoginCommand) provider.AuthRequest {
	return provider.AuthRequest{User: cmd.Username, Password: cmd.Password}
}

func paymentRequest(cmd CreatePaymentCommand) provider.PaymentRequest {
	return provider.PaymentRequest{
		Amount:      cmd.Amount,
		Currency:    cmd.Currency,
		Destination: cmd.DestinationAccount,
	}
}

func loginResult(res *provider.AuthResult) *LoginResult {
	return &LoginResult{
		IsSuccess: res.Success,
		JWT:       res.Token,
		ExpiresAt: res.ExpiresAt,
	}
}

func paymentResult(res *provider.PaymentResult) *PaymentResult {
	return &PaymentResult{
		IsSuccess:         res.Success,
		PaymentID:         res.PaymentID,
		ProviderReference: res.Reference,
		ProcessedAt:       res.ProcessedAt,
	}
}

// absorb logs a classified provider failure and reports whether it was
// one. Anything else is left to the caller.
func absorb(logger observability.Logger, msg string, err error) bool {
	kind, ok := gateway.KindOf(err)
	if !ok {
		return false
	}
	logger.Error(msg,
		observability.String("failure_kind", kind.String()),
		observability.Error(err),
	)
	return true
}
