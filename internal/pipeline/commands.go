// Package pipeline turns caller commands into provider calls and
// canonical results.
//
// Each command is validated first; invalid input yields a
// *util.ValidationError and never reaches the provider. Provider
// failures of any kind (circuit open, exhausted retries, rejection,
// cancellation) are logged and folded into a result with IsSuccess set
// to false. Only unexpected errors are returned to the caller.
package pipeline

import "time"

// LoginCommand authenticates a user.
type LoginCommand struct {
	Username string `json:"username" validate:"required,email,min=3,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// CreatePaymentCommand requests a payment.
type CreatePaymentCommand struct {
	Amount             float64 `json:"amount" validate:"gt=0,lte=1000000"`
	Currency           string  `json:"currency" validate:"required,len=3,alpha,uppercase"`
	DestinationAccount string  `json:"destinationAccount" validate:"required,min=5,max=50,alphanum,uppercase"`

	// BearerToken is forwarded to the provider when non-empty.
	BearerToken string `json:"-"`
}

// LoginResult is the canonical outcome of a login.
type LoginResult struct {
	IsSuccess bool
	JWT       *string
	ExpiresAt *time.Time
}

// PaymentResult is the canonical outcome of a payment.
type PaymentResult struct {
	IsSuccess         bool
	PaymentID         *string
	ProviderReference *string
	ProcessedAt       *time.Time
}
