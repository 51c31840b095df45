package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/paybff/internal/server/middleware"
	"github.com/vyrodovalexey/paybff/internal/util"
	"github.com/vyrodovalexey/paybff/internal/versioning"
)

const bearerPrefix = "Bearer "

type handlers struct {
	pipeline Pipeline
}

func (h *handlers) loginV1(c *gin.Context) {
	var req versioning.LoginRequestV1
	if !bind(c, &req) {
		return
	}

	res, err := h.pipeline.Login(c.Request.Context(), req.Command())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, versioning.LoginV1(res))
}

func (h *handlers) loginV2(c *gin.Context) {
	var req versioning.LoginRequestV2
	if !bind(c, &req) {
		return
	}

	res, err := h.pipeline.Login(c.Request.Context(), req.Command())
	if err != nil {
		_ = c.Error(err)
		return
	}

	// Only a path containing /v1/ is flagged; this route never is.
	versioning.ApplyDeprecation(c.Writer.Header(), c.Request.URL.Path)
	c.JSON(http.StatusOK, versioning.LoginV2(res))
}

func (h *handlers) createPaymentV1(c *gin.Context) {
	var req versioning.PaymentRequestV1
	if !bind(c, &req) {
		return
	}

	res, err := h.pipeline.CreatePayment(c.Request.Context(), req.Command(bearerToken(c.Request)))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, versioning.PaymentV1(res))
}

// bind decodes the JSON body. A body that cannot be decoded is reported
// as a validation error.
func bind(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.AbortWithProblem(c,
				middleware.TooLargeProblem(tooLarge.Limit, c.Request.URL.Path, middleware.GetCorrelationID(c)))
			return false
		}
		verr := util.NewValidationError("request body is invalid")
		verr.AddField("body", "request body must be a valid JSON object")
		_ = c.Error(verr)
		return false
	}
	return true
}

// bearerToken returns the token of an "Authorization: Bearer" header, or
// "" when there is none.
func bearerToken(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
