package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies why a resilient provider call failed.
type Kind int

const (
	// KindCircuitOpen means the breaker rejected the call; nothing was sent.
	KindCircuitOpen Kind = iota
	// KindTransient means every attempt failed transiently.
	KindTransient
	// KindPermanent means the provider rejected the request.
	KindPermanent
	// KindCanceled means the caller's context ended the call.
	KindCanceled
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindCircuitOpen:
		return "circuit_open"
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is returned by Gateway operations.
type Error struct {
	Kind     Kind
	Op       string
	Attempts int
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("provider %s %s after %d attempt(s): %v", e.Op, e.Kind, e.Attempts, e.Cause)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf returns the kind of a gateway error anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var gErr *Error
	if errors.As(err, &gErr) {
		return gErr.Kind, true
	}
	return 0, false
}
