// Package correlation carries the per-request correlation identifier.
//
// The identifier is minted once when a request enters the BFF (or taken
// from the inbound X-Correlation-ID header), attached to the request
// context, echoed on the response, and sent unchanged on every provider
// attempt made for that request, retries included.
package correlation

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Header is the HTTP header carrying the correlation identifier.
const Header = "X-Correlation-ID"

// maxLength bounds inbound identifiers accepted from callers.
const maxLength = 128

type contextKey struct{}

// New returns a fresh correlation identifier.
func New() string {
	return uuid.New().String()
}

// FromInbound returns the caller supplied identifier when it is usable,
// otherwise a fresh one.
func FromInbound(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > maxLength || strings.ContainsAny(value, "\r\n") {
		return New()
	}
	return value
}

// WithID returns a copy of ctx carrying id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identifier stored in ctx, or "" if none.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

// Ensure returns ctx and its identifier, minting one if ctx has none.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return WithID(ctx, id), id
}
