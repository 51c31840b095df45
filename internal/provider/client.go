package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/vyrodovalexey/paybff/internal/correlation"
	"github.com/vyrodovalexey/paybff/internal/observability"
	"github.com/vyrodovalexey/paybff/internal/util"
)

// maxResponseBytes caps how much of a provider response is read.
const maxResponseBytes = 1 << 20

// Config configures a Client.
type Config struct {
	BaseURL    string
	HealthPath string
	Transport  TransportConfig

	// HTTPClient overrides the client built from Transport.
	HTTPClient *http.Client
}

// Client performs single attempts against the provider.
type Client struct {
	baseURL    *url.URL
	healthPath string
	httpClient *http.Client
	logger     observability.Logger
}

// NewClient creates a provider client.
func NewClient(cfg Config, logger observability.Logger) (*Client, error) {
	if err := util.ValidateURL(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("provider base URL: %w", err)
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("provider base URL: %w", err)
	}

	healthPath := cfg.HealthPath
	if healthPath == "" {
		healthPath = DefaultHealthPath
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: NewTransport(cfg.Transport)}
	}

	if logger == nil {
		logger = observability.NopLogger()
	}

	return &Client{
		baseURL:    base,
		healthPath: healthPath,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Authenticate sends one authentication attempt.
func (c *Client) Authenticate(ctx context.Context, req AuthRequest, correlationID string) (*AuthResult, error) {
	var result AuthResult
	if err := c.post(ctx, OpAuthenticate, AuthenticatePath, req, "", correlationID, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Pay sends one payment attempt. bearerToken is forwarded when non-empty.
func (c *Client) Pay(ctx context.Context, req PaymentRequest, bearerToken, correlationID string) (*PaymentResult, error) {
	var result PaymentResult
	if err := c.post(ctx, OpPay, PayPath, req, bearerToken, correlationID, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health probes the provider's health endpoint and returns its status
// code. A transport failure is returned as an error.
func (c *Client) Health(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(c.healthPath), http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("build health request: %w", err)
	}
	if id := correlation.FromContext(ctx); id != "" {
		req.Header.Set(correlation.Header, id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	return resp.StatusCode, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

func (c *Client) post(
	ctx context.Context,
	op, path string,
	body any,
	bearerToken, correlationID string,
	out any,
) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return util.NewPermanentError(op, 0, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(payload))
	if err != nil {
		return util.NewPermanentError(op, 0, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(correlation.Header, correlationID)
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}
	observability.InjectTraceContext(ctx, req)

	logger := c.logger.WithContext(ctx).With(
		observability.String("operation", op),
		observability.String(observability.FieldCorrelationID, correlationID),
	)
	logger.Debug("calling provider")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("provider %s: %w", op, ctxErr)
		}
		return util.NewTransientError(op, 0, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("provider %s: %w", op, ctxErr)
		}
		return util.NewTransientError(op, resp.StatusCode, fmt.Errorf("read body: %w", err))
	}

	if err := classifyStatus(op, resp.StatusCode, data); err != nil {
		logger.Debug("provider returned error status", observability.Int("status", resp.StatusCode))
		return err
	}

	if err := decodeBody(data, out); err != nil {
		return util.NewPermanentError(op, resp.StatusCode, "malformed response body", err)
	}

	logger.Debug("provider call completed", observability.Int("status", resp.StatusCode))
	return nil
}

// classifyStatus maps a non-2xx status to a ProviderError.
func classifyStatus(op string, status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusRequestTimeout || status >= 500:
		return util.NewTransientError(op, status, nil)
	default:
		return util.NewPermanentError(op, status, snippet(body), nil)
	}
}

var errEmptyBody = errors.New("empty response body")

func decodeBody(data []byte, out any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errEmptyBody
	}
	return json.Unmarshal(trimmed, out)
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
