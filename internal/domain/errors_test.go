package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestError_IsMatchesKindSentinel(t *testing.T) {
	cases := []struct {
		kind     ErrorKind
		sentinel error
		retry    bool
	}{
		{KindTransport, ErrTransport, true},
		{KindServer, ErrServer, true},
		{KindClient, ErrClient, false},
		{KindDecode, ErrDecode, false},
	}
	all := []error{ErrTransport, ErrServer, ErrClient, ErrDecode}

	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &RequestError{Kind: tc.kind, Method: "POST", URL: "http://x/extract"})
			for _, s := range all {
				assert.Equal(t, s == tc.sentinel, errors.Is(err, s), "sentinel %v", s)
			}
			assert.Equal(t, tc.retry, IsRetryable(err))
		})
	}
}

func TestRequestError_Message(t *testing.T) {
	err := &RequestError{
		Kind:       KindClient,
		Method:     "POST",
		URL:        "http://x/extract",
		StatusCode: 404,
		Body:       []byte(`{"detail":"graph not found"}`),
	}
	assert.Equal(t, "POST http://x/extract: client failure: status 404: graph not found", err.Error())
	assert.Equal(t, "graph not found", err.Detail())

	plain := &RequestError{Kind: KindServer, Method: "POST", URL: "http://x/extract", StatusCode: 502, Body: []byte("bad gateway")}
	assert.Equal(t, "POST http://x/extract: server failure: status 502: bad gateway", plain.Error())
	assert.Empty(t, plain.Detail())
}

func TestRequestError_Timeout(t *testing.T) {
	timeout := &RequestError{Kind: KindTransport, Err: fmt.Errorf("do: %w", context.DeadlineExceeded)}
	assert.True(t, timeout.Timeout())
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)

	refused := &RequestError{Kind: KindTransport, Err: errors.New("connection refused")}
	assert.False(t, refused.Timeout())

	server := &RequestError{Kind: KindServer, StatusCode: 504}
	assert.False(t, server.Timeout())
}

func TestIsRetryable_ForeignError(t *testing.T) {
	assert.False(t, IsRetryable(errors.New("boom")))
	assert.False(t, IsRetryable(context.Canceled))
}
