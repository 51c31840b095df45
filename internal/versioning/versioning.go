// Package versioning shapes canonical pipeline results into the
// versioned wire contracts of the public API.
package versioning

import (
	"net/http"
	"strings"
	"time"

	"github.com/vyrodovalexey/paybff/internal/pipeline"
)

// API versions.
const (
	V1 = "v1"
	V2 = "v2"
)

// Deprecation header values announced for v1 login.
const (
	DeprecationDate = "Sat, 31 Dec 2025 23:59:59 GMT"
	SunsetDate      = "Sun, 30 Jun 2026 23:59:59 GMT"
	SuccessorLink   = `</v2/auth/login>; rel="successor-version"`
)

// LoginRequestV1 is the v1 login body.
type LoginRequestV1 struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Command maps the request onto the canonical login command.
func (r LoginRequestV1) Command() pipeline.LoginCommand {
	return pipeline.LoginCommand{Username: r.Username, Password: r.Password}
}

// LoginRequestV2 is the v2 login body. MfaCode is accepted but not
// forwarded; the provider has no MFA step.
type LoginRequestV2 struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	MfaCode  *string `json:"mfaCode,omitempty"`
}

// Command maps the request onto the canonical login command.
func (r LoginRequestV2) Command() pipeline.LoginCommand {
	return pipeline.LoginCommand{Username: r.Email, Password: r.Password}
}

// PaymentRequestV1 is the v1 payment body.
type PaymentRequestV1 struct {
	Amount             float64 `json:"amount"`
	Currency           string  `json:"currency"`
	DestinationAccount string  `json:"destinationAccount"`
}

// Command maps the request onto the canonical payment command.
func (r PaymentRequestV1) Command(bearerToken string) pipeline.CreatePaymentCommand {
	return pipeline.CreatePaymentCommand{
		Amount:             r.Amount,
		Currency:           r.Currency,
		DestinationAccount: r.DestinationAccount,
		BearerToken:        bearerToken,
	}
}

// LoginResponseV1 is the v1 login answer. Absent values serialize as
// null.
type LoginResponseV1 struct {
	IsSuccess bool       `json:"isSuccess"`
	JWT       *string    `json:"jwt"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// LoginResponseV2 adds MfaRequired to the v1 shape.
type LoginResponseV2 struct {
	IsSuccess   bool       `json:"isSuccess"`
	JWT         *string    `json:"jwt"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	MfaRequired bool       `json:"mfaRequired"`
}

// PaymentResponseV1 is the v1 payment answer.
type PaymentResponseV1 struct {
	IsSuccess         bool       `json:"isSuccess"`
	PaymentID         *string    `json:"paymentId"`
	ProviderReference *string    `json:"providerReference"`
	ProcessedAt       *time.Time `json:"processedAt"`
}

// LoginV1 shapes a login result for v1.
func LoginV1(r *pipeline.LoginResult) LoginResponseV1 {
	if r == nil {
		return LoginResponseV1{}
	}
	return LoginResponseV1{IsSuccess: r.IsSuccess, JWT: r.JWT, ExpiresAt: r.ExpiresAt}
}

// LoginV2 shapes a login result for v2. MFA is never required.
func LoginV2(r *pipeline.LoginResult) LoginResponseV2 {
	v1 := LoginV1(r)
	return LoginResponseV2{
		IsSuccess:   v1.IsSuccess,
		JWT:         v1.JWT,
		ExpiresAt:   v1.ExpiresAt,
		MfaRequired: false,
	}
}

// PaymentV1 shapes a payment result for v1.
func PaymentV1(r *pipeline.PaymentResult) PaymentResponseV1 {
	if r == nil {
		return PaymentResponseV1{}
	}
	return PaymentResponseV1{
		IsSuccess:         r.IsSuccess,
		PaymentID:         r.PaymentID,
		ProviderReference: r.ProviderReference,
		ProcessedAt:       r.ProcessedAt,
	}
}

// IsDeprecatedPath reports whether path addresses the deprecated v1 API.
func IsDeprecatedPath(path string) bool {
	return strings.Contains(path, "/"+V1+"/")
}

// ApplyDeprecation sets the Deprecation, Sunset and Link headers when
// path is a v1 path and reports whether it did.
func ApplyDeprecation(h http.Header, path string) bool {
	if !IsDeprecatedPath(path) {
		return false
	}
	h.Set("Deprecation", DeprecationDate)
	h.Set("Sunset", SunsetDate)
	h.Set("Link", SuccessorLink)
	return true
}
