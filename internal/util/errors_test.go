package util

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		field          string
		message        string
		expectedString string
	}{
		{
			name:           "with field",
			field:          "resilience.retryAttempts",
			message:        "must not be negative",
			expectedString: "config error at resilience.retryAttempts: must not be negative",
		},
		{
			name:           "without field",
			message:        "invalid configuration",
			expectedString: "config error: invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := NewConfigError(tt.field, tt.message)

			assert.Equal(t, tt.expectedString, err.Error())
			assert.True(t, errors.Is(err, ErrConfigInvalid))
			assert.Nil(t, err.Unwrap())
		})
	}
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := NewValidationError("login rejected")
	err.AddField("password", "password must be at least 8 characters")
	err.AddField("email", "email must be a valid email address")

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrPermanent))
	assert.Contains(t, err.Error(), "login rejected")
	assert.Equal(t,
		"email must be a valid email address, password must be at least 8 characters",
		err.Detail())

	var target *ValidationError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &target))
	assert.Len(t, target.Fields, 2)
}

func TestValidationError_DetailWithoutFields(t *testing.T) {
	t.Parallel()

	err := &ValidationError{Message: "empty body"}
	assert.Equal(t, "empty body", err.Detail())
	assert.Equal(t, "validation error: empty body", err.Error())

	err.AddField("body", "required")
	assert.Equal(t, "required", err.Detail())
}

func TestProviderError_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		err           *ProviderError
		wantTransient bool
		wantString    string
	}{
		{
			name:          "transient status",
			err:           NewTransientError("pay", 503, nil),
			wantTransient: true,
			wantString:    "provider pay returned 503",
		},
		{
			name:          "transient network",
			err:           NewTransientError("auth", 0, errors.New("connection refused")),
			wantTransient: true,
			wantString:    "provider auth: connection refused",
		},
		{
			name:          "permanent",
			err:           NewPermanentError("pay", 400, "bad request", nil),
			wantTransient: false,
			wantString:    "provider pay returned 400: bad request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.wantString, tt.err.Error())
			assert.Equal(t, tt.wantTransient, errors.Is(tt.err, ErrTransient))
			assert.Equal(t, !tt.wantTransient, errors.Is(tt.err, ErrPermanent))
			assert.Equal(t, !tt.wantTransient, IsPermanent(fmt.Errorf("attempt: %w", tt.err)))
		})
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("eof")
	err := NewPermanentError("auth", 200, "malformed body", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, err.Unwrap())
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	assert.Nil(t, WrapError(nil, "ignored"))

	base := errors.New("boom")
	wrapped := WrapError(base, "loading config")
	assert.Equal(t, "loading config: boom", wrapped.Error())
	assert.True(t, errors.Is(wrapped, base))
}

func TestIsPermanent_Nil(t *testing.T) {
	t.Parallel()

	assert.False(t, IsPermanent(nil))
	assert.False(t, IsPermanent(errors.New("plain")))
}
