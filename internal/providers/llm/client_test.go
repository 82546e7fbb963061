package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(tripAfter uint32) *Client {
	return NewClient(ClientConfig{
		Timeout:  5 * time.Second,
		RetryMax: 0,
		Breaker: resilience.Settings{
			Timeout: time.Minute,
			ReadyToTrip: func(c resilience.Counts) bool {
				return c.ConsecutiveFailures >= tripAfter
			},
		},
	})
}

func TestPostJSONDecodesReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("X-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"42"}`))
	}))
	defer srv.Close()

	var out struct {
		Answer string `json:"answer"`
	}
	err := testClient(5).PostJSON(context.Background(), "test", srv.URL, map[string]string{"X-Key": "secret"}, map[string]string{"q": "?"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "42", out.Answer)
}

func TestPostJSONReturnsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`overloaded`))
	}))
	defer srv.Close()

	var out struct{}
	err := testClient(5).PostJSON(context.Background(), "test", srv.URL, nil, struct{}{}, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)

	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusInternalServerError, re.StatusCode)
	assert.Equal(t, "overloaded", re.Body)
	assert.Equal(t, "test", re.Provider)
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(2)
	var out struct{}
	for i := 0; i < 2; i++ {
		_ = c.PostJSON(context.Background(), "flaky", srv.URL, nil, struct{}{}, &out)
	}
	err := c.PostJSON(context.Background(), "flaky", srv.URL, nil, struct{}{}, &out)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "open", c.BreakerStates()["flaky"])
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(1)
	var out struct{}
	for i := 0; i < 3; i++ {
		err := c.PostJSON(context.Background(), "keys", srv.URL, nil, struct{}{}, &out)
		var re *RequestError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, http.StatusUnauthorized, re.StatusCode)
	}
	assert.Equal(t, "closed", c.BreakerStates()["keys"])
}

func TestCancelledRequestKeepsBreakerClosed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("cancelled request reached the provider")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(1)
	var out struct{}
	err := c.PostJSON(ctx, "anthropic", srv.URL, nil, struct{}{}, &out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "closed", c.BreakerStates()["anthropic"])
}

func TestRequestErrorUnwrapsCause(t *testing.T) {
	err := &RequestError{Provider: "groq", Body: "dial failed", Cause: context.DeadlineExceeded}
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, &RequestError{Provider: "groq"}, context.DeadlineExceeded)
}
