package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/paybff/internal/correlation"
	"github.com/vyrodovalexey/paybff/internal/util"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL + "/"}, nil)
	require.NoError(t, err)
	return c
}

func TestNewClient_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{BaseURL: "not a url"}, nil)
	assert.Error(t, err)

	_, err = NewClient(Config{}, nil)
	assert.Error(t, err)
}

func TestClient_Authenticate(t *testing.T) {
	t.Parallel()

	expires := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, AuthenticatePath, r.URL.Path)
		assert.Equal(t, "corr-1", r.Header.Get(correlation.Header))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"user": "test@example.com", "pwd": "password123"}, body)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"token":"mock-jwt-token-12345","expires":"2025-06-01T12:00:00Z"}`))
	})

	res, err := c.Authenticate(context.Background(),
		AuthRequest{User: "test@example.com", Password: "password123"}, "corr-1")

	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotNil(t, res.Token)
	assert.Equal(t, "mock-jwt-token-12345", *res.Token)
	require.NotNil(t, res.ExpiresAt)
	assert.True(t, expires.Equal(*res.ExpiresAt))
}

func TestClient_AuthenticateRejected(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	})

	res, err := c.Authenticate(context.Background(), AuthRequest{User: "a@b.c", Password: "x"}, "corr")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Nil(t, res.Token)
	assert.Nil(t, res.ExpiresAt)
}

func TestClient_Pay(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PayPath, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "corr-2", r.Header.Get(correlation.Header))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 100.5, body["total"])
		assert.Equal(t, "EUR", body["curr"])
		assert.Equal(t, "DE89370400440532013000", body["dest"])

		_, _ = w.Write([]byte(`{"success":true,"paymentId":"PAY_ABCDEF12","reference":"REF_123456","timestamp":"2025-06-01T12:00:00.1234567Z"}`))
	})

	res, err := c.Pay(context.Background(),
		PaymentRequest{Amount: 100.5, Currency: "EUR", Destination: "DE89370400440532013000"}, "tok", "corr-2")

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "PAY_ABCDEF12", *res.PaymentID)
	assert.Equal(t, "REF_123456", *res.Reference)
	require.NotNil(t, res.ProcessedAt)
}

func TestClient_PayWithoutToken(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	_, err := c.Pay(context.Background(), PaymentRequest{Amount: 1, Currency: "USD", Destination: "ACCT1"}, "", "c")
	require.NoError(t, err)
}

func TestClient_StatusClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		status        int
		body          string
		wantTransient bool
	}{
		{name: "500", status: 500, wantTransient: true},
		{name: "502", status: 502, wantTransient: true},
		{name: "503", status: 503, wantTransient: true},
		{name: "408", status: 408, wantTransient: true},
		{name: "400", status: 400, body: `{"error":"bad"}`, wantTransient: false},
		{name: "401", status: 401, wantTransient: false},
		{name: "404", status: 404, wantTransient: false},
		{name: "422", status: 422, wantTransient: false},
		{name: "302", status: 302, wantTransient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Pay(context.Background(), PaymentRequest{Amount: 1, Currency: "USD", Destination: "ACCT1"}, "", "c")
			require.Error(t, err)

			var perr *util.ProviderError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.status, perr.StatusCode)
			assert.Equal(t, OpPay, perr.Operation)
			assert.Equal(t, tt.wantTransient, errors.Is(err, util.ErrTransient))
			assert.Equal(t, !tt.wantTransient, util.IsPermanent(err))
		})
	}
}

func TestClient_MalformedBodyIsPermanent(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`not json`, ``, `null`, `{"success":"yes"}`} {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		})

		_, err := c.Authenticate(context.Background(), AuthRequest{}, "c")
		assert.True(t, util.IsPermanent(err), "body %q", body)
	}
}

func TestClient_NetworkErrorIsTransient(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: url}, nil)
	require.NoError(t, err)

	_, err = c.Authenticate(context.Background(), AuthRequest{}, "c")
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrTransient))
}

func TestClient_ContextCancellationIsNotClassified(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Pay(ctx, PaymentRequest{}, "", "c")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, errors.Is(err, util.ErrTransient))
	assert.False(t, util.IsPermanent(err))
}

func TestClient_Health(t *testing.T) {
	t.Parallel()

	var status atomic.Int32
	status.Store(http.StatusOK)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		assert.Equal(t, "corr-h", r.Header.Get(correlation.Header))
		w.WriteHeader(int(status.Load()))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{BaseURL: srv.URL, HealthPath: "/status"}, nil)
	require.NoError(t, err)

	ctx := correlation.WithID(context.Background(), "corr-h")
	code, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)

	status.Store(http.StatusServiceUnavailable)
	code, err = c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestSnippet(t *testing.T) {
	t.Parallel()

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	assert.Len(t, snippet(long), 200)
	assert.Equal(t, "short", snippet([]byte("  short \n")))
}

func TestSnippet_KeepsRunesWhole(t *testing.T) {
	t.Parallel()

	// 199 ASCII bytes followed by a two-byte rune straddling the limit.
	body := []byte(strings.Repeat("x", 199) + "é" + strings.Repeat("y", 50))

	got := snippet(body)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("x", 199), got)
}

func TestNewTransport_Defaults(t *testing.T) {
	t.Parallel()

	tr := NewTransport(TransportConfig{})
	def := DefaultTransportConfig()
	assert.Equal(t, def.MaxIdleConns, tr.MaxIdleConns)
	assert.Equal(t, def.MaxIdleConnsPerHost, tr.MaxIdleConnsPerHost)
	assert.Equal(t, def.IdleConnTimeout, tr.IdleConnTimeout)

	custom := NewTransport(TransportConfig{MaxIdleConns: 5, MaxIdleConnsPerHost: 2, IdleConnTimeout: time.Second, DialTimeout: time.Second})
	assert.Equal(t, 5, custom.MaxIdleConns)
	assert.Equal(t, 2, custom.MaxIdleConnsPerHost)
}
