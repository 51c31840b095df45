// Package provider talks to the downstream payment provider over HTTP.
//
// Each method performs exactly one attempt. Failures come back as
// *util.ProviderError classified as transient (network errors, 408,
// 5xx) or permanent (other non-2xx statuses, malformed bodies) so the
// retry layer can decide what to do with them.
package provider

import "time"

// Operation names used in errors, logs and metrics.
const (
	OpAuthenticate = "authenticate"
	OpPay          = "pay"
	OpHealth       = "health"
)

// Provider endpoint paths.
const (
	AuthenticatePath  = "/api/authenticate"
	PayPath           = "/api/pay"
	DefaultHealthPath = "/health"
)

// AuthRequest is the provider's authentication body.
type AuthRequest struct {
	User     string `json:"user"`
	Password string `json:"pwd"`
}

// PaymentRequest is the provider's payment body.
type PaymentRequest struct {
	Amount      float64 `json:"total"`
	Currency    string  `json:"curr"`
	Destination string  `json:"dest"`
}

// AuthResult is the provider's authentication answer.
type AuthResult struct {
	Success   bool       `json:"success"`
	Token     *string    `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expires,omitempty"`
}

// PaymentResult is the provider's payment answer.
type PaymentResult struct {
	Success     bool       `json:"success"`
	PaymentID   *string    `json:"paymentId,omitempty"`
	Reference   *string    `json:"reference,omitempty"`
	ProcessedAt *time.Time `json:"timestamp,omitempty"`
}
