package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/paybff/internal/util"
)

// ContentTypeProblemJSON is the media type of error responses.
const ContentTypeProblemJSON = "application/problem+json"

// Problem type URIs.
const (
	ProblemTypeValidation  = "https://api.BackendForFrontend.com/problems/validation-error"
	ProblemTypeInternal    = "https://api.BackendForFrontend.com/problems/internal-error"
	ProblemTypeRateLimited = "https://api.BackendForFrontend.com/problems/rate-limited"
	ProblemTypeNotFound    = "https://api.BackendForFrontend.com/problems/not-found"
	ProblemTypeTooLarge    = "https://api.BackendForFrontend.com/problems/payload-too-large"
)

// Problem is an RFC 7807 problem document. TraceID carries the
// correlation id.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance"`
	TraceID  string `json:"traceId"`
}

// ProblemFor maps err to a problem document. Validation errors become
// 400 with the field messages as detail; anything else is a 500 that
// does not leak the error text.
func ProblemFor(err error, instance, correlationID string) Problem {
	var verr *util.ValidationError
	if errors.As(err, &verr) {
		return Problem{
			Type:     ProblemTypeValidation,
			Title:    "Validation Error",
			Status:   http.StatusBadRequest,
			Detail:   verr.Detail(),
			Instance: instance,
			TraceID:  correlationID,
		}
	}
	return Problem{
		Type:     ProblemTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   "An error occurred while processing your request",
		Instance: instance,
		TraceID:  correlationID,
	}
}

// TooLargeProblem reports a request body over limit bytes.
func TooLargeProblem(limit int64, instance, correlationID string) Problem {
	return Problem{
		Type:     ProblemTypeTooLarge,
		Title:    "Payload Too Large",
		Status:   http.StatusRequestEntityTooLarge,
		Detail:   fmt.Sprintf("request body must not exceed %d bytes", limit),
		Instance: instance,
		TraceID:  correlationID,
	}
}

// AbortWithProblem writes p and aborts the chain.
func AbortWithProblem(c *gin.Context, p Problem) {
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.AbortWithStatusJSON(p.Status, p)
}
