package versioning

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/paybff/internal/pipeline"
)

func strPtr(s string) *string { return &s }

func TestLoginV1_JSON(t *testing.T) {
	t.Parallel()

	expires := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	body, err := json.Marshal(LoginV1(&pipeline.LoginResult{IsSuccess: true, JWT: strPtr("jwt"), ExpiresAt: &expires}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"isSuccess":true,"jwt":"jwt","expiresAt":"2025-01-02T03:04:05Z"}`, string(body))
}

func TestLoginV1_FailureSerializesNulls(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(LoginV1(&pipeline.LoginResult{IsSuccess: false}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"isSuccess":false,"jwt":null,"expiresAt":null}`, string(body))

	assert.Equal(t, LoginResponseV1{}, LoginV1(nil))
}

func TestLoginV2_AddsMfaRequired(t *testing.T) {
	t.Parallel()

	body, err := json.Marshal(LoginV2(&pipeline.LoginResult{IsSuccess: true, JWT: strPtr("t")}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"isSuccess":true,"jwt":"t","expiresAt":null,"mfaRequired":false}`, string(body))
}

func TestPaymentV1_JSON(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	body, err := json.Marshal(PaymentV1(&pipeline.PaymentResult{
		IsSuccess:         true,
		PaymentID:         strPtr("PAY_1"),
		ProviderReference: strPtr("REF_1"),
		ProcessedAt:       &at,
	}))
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"isSuccess":true,"paymentId":"PAY_1","providerReference":"REF_1","processedAt":"2025-05-06T07:08:09Z"}`,
		string(body))

	body, err = json.Marshal(PaymentV1(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"isSuccess":false,"paymentId":null,"providerReference":null,"processedAt":null}`, string(body))
}

func TestRequestsToCommands(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		pipeline.LoginCommand{Username: "a@b.io", Password: "pw"},
		LoginRequestV1{Username: "a@b.io", Password: "pw"}.Command())

	code := "123456"
	assert.Equal(t,
		pipeline.LoginCommand{Username: "a@b.io", Password: "pw"},
		LoginRequestV2{Email: "a@b.io", Password: "pw", MfaCode: &code}.Command())

	assert.Equal(t,
		pipeline.CreatePaymentCommand{Amount: 5, Currency: "USD", DestinationAccount: "ACCT1", BearerToken: "tok"},
		PaymentRequestV1{Amount: 5, Currency: "USD", DestinationAccount: "ACCT1"}.Command("tok"))
}

func TestApplyDeprecation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{path: "/v1/auth/login", want: true},
		{path: "/api/v1/payments", want: true},
		{path: "/v2/auth/login", want: false},
		{path: "/v1", want: false},
		{path: "/v10/auth/login", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			h := http.Header{}
			assert.Equal(t, tt.want, ApplyDeprecation(h, tt.path))
			if tt.want {
				assert.Equal(t, DeprecationDate, h.Get("Deprecation"))
				assert.Equal(t, SunsetDate, h.Get("Sunset"))
				assert.Equal(t, `</v2/auth/login>; rel="successor-version"`, h.Get("Link"))
			} else {
				assert.Empty(t, h)
			}
		})
	}
}

func BenchmarkLoginV1(b *testing.B) {
	expires := time.Now().Add(time.Hour)
	res := &pipeline.LoginResult{IsSuccess: true, JWT: strPtr("mock-jwt-token-12345"), ExpiresAt: &expires}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = LoginV1(res)
	}
}

func BenchmarkLoginV2(b *testing.B) {
	expires := time.Now().Add(time.Hour)
	res := &pipeline.LoginResult{IsSuccess: true, JWT: strPtr("mock-jwt-token-12345"), ExpiresAt: &expires}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = LoginV2(res)
	}
}

func BenchmarkPaymentV1(b *testing.B) {
	processed := time.Now()
	res := &pipeline.PaymentResult{
		IsSuccess:         true,
		PaymentID:         strPtr("PAY_0A1B2C3D"),
		ProviderReference: strPtr("REF_123456"),
		ProcessedAt:       &processed,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = PaymentV1(res)
	}
}

func BenchmarkPaymentRequestV1_Command(b *testing.B) {
	req := PaymentRequestV1{Amount: 100.5, Currency: "USD", DestinationAccount: "ACC12345"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = req.Command("tok")
	}
}

func BenchmarkLoginRequestV1_Unmarshal(b *testing.B) {
	data := []byte(`{"username":"test@example.com","password":"password123"}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var req LoginRequestV1
		if err := json.Unmarshal(data, &req); err != nil {
			b.Fatal(err)
		}
		_ = req.Command()
	}
}

func BenchmarkLoginResponseV1_Marshal(b *testing.B) {
	expires := time.Now().Add(time.Hour)
	resp := LoginV1(&pipeline.LoginResult{IsSuccess: true, JWT: strPtr("mock-jwt-token-12345"), ExpiresAt: &expires})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := json.Marshal(resp); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoginV2_RoundTrip(b *testing.B) {
	data := []byte(`{"email":"test@example.com","password":"password123","mfaCode":"123456"}`)
	expires := time.Now().Add(time.Hour)
	res := &pipeline.LoginResult{IsSuccess: true, JWT: strPtr("jwt"), ExpiresAt: &expires}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var req LoginRequestV2
		if err := json.Unmarshal(data, &req); err != nil {
			b.Fatal(err)
		}
		_ = req.Command()
		if _, err := json.Marshal(LoginV2(res)); err != nil {
			b.Fatal(err)
		}
	}
}
