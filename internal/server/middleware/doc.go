// Package middleware provides the gin middleware chain of the BFF:
// correlation ids, request logging, tracing, metrics, rate limiting and
// the error boundary that renders problem+json responses.
package middleware
