package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatusError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status  int
		kind    ErrorKind
		message string
	}{
		{http.StatusUnauthorized, KindAuth, MsgAuth},
		{http.StatusNotFound, KindNotFound, MsgNotFound},
		{http.StatusTooManyRequests, KindRateLimit, MsgRateLimit},
		{http.StatusInternalServerError, KindServiceUnavailable, MsgServiceUnavailable},
		{http.StatusBadGateway, KindServiceUnavailable, MsgServiceUnavailable},
		{http.StatusServiceUnavailable, KindServiceUnavailable, MsgServiceUnavailable},
		{http.StatusGatewayTimeout, KindServiceUnavailable, MsgServiceUnavailable},
		{http.StatusBadRequest, KindUnknown, "Error 400: Bad Request"},
		{http.StatusForbidden, KindUnknown, "Error 403: Forbidden"},
		{http.StatusTeapot, KindUnknown, "Error 418: I'm a teapot"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			t.Parallel()
			err := NewStatusError(tt.status)
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestErrorIsMatchesKind(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("lookup: %w", NewError(KindNetwork, cause))

	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, cause, "cause stays reachable through Unwrap")
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Equal(t, MsgNetwork, MessageOf(err))
}

func TestKindOfForeignError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.Equal(t, "Unknown error.", MessageOf(err))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestErrorKindText(t *testing.T) {
	t.Parallel()

	b, err := KindRateLimit.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "rate_limit", string(b))
	assert.Equal(t, "malformed_response", KindMalformedResponse.String())
	assert.Equal(t, "unknown", ErrorKind(99).String())
}

func TestErrorString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "validation: Please enter a city name.", ErrValidation.Error())
	err := NewError(KindTimeout, errors.New("deadline"))
	assert.Contains(t, err.Error(), "timeout")
	assert.Contains(t, err.Error(), "deadline")
}
