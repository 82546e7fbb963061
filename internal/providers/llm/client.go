package llm

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/resilience"
)

// ClientConfig configures the shared provider HTTP client
type ClientConfig struct {
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Breaker      resilience.Settings
}

// DefaultClientConfig returns production settings
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:      120 * time.Second,
		RetryMax:     2,
		RetryWaitMin: 1 * time.Second,
		RetryWaitMax: 10 * time.Second,
		Breaker: resilience.Settings{
			MaxRequests: 1,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts resilience.Counts) bool {
				return counts.ConsecutiveFailures >= 5 ||
					(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.5)
			},
		},
	}
}

// Client is the HTTP client shared by all provider adapters. Each family
// gets its own circuit breaker.
type Client struct {
	resty    *resty.Client
	breakers *resilience.Group
}

// NewClient creates a provider client with retries and circuit breakers
func NewClient(cfg ClientConfig) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		retryClient.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = cfg.RetryWaitMax
	}
	retryClient.Logger = nil
	// keep the final response so status codes reach RequestError
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	restyClient := resty.NewWithClient(retryClient.StandardClient()).
		SetHeader("User-Agent", "AgentDesk/1.0").
		SetHeader("Content-Type", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	if cfg.Timeout > 0 {
		restyClient.SetTimeout(cfg.Timeout)
	}

	breaker := cfg.Breaker
	next := breaker.IsFailure
	breaker.IsFailure = func(err error) bool {
		if clientError(err) {
			return false
		}
		if next != nil {
			return next(err)
		}
		return true
	}

	return &Client{
		resty:    restyClient,
		breakers: resilience.NewGroup(breaker),
	}
}

// PostJSON sends body to url and decodes a 2xx reply into out. Failures
// are returned as *RequestError.
func (c *Client) PostJSON(ctx context.Context, provider, url string, headers map[string]string, body, out interface{}) error {
	return c.breakers.Get(provider).Execute(ctx, func(ctx context.Context) error {
		resp, err := c.resty.R().
			SetContext(ctx).
			SetHeaders(headers).
			SetBody(body).
			SetResult(out).
			Post(url)
		if err != nil {
			return &RequestError{Provider: provider, Body: err.Error(), Cause: err}
		}
		if resp.IsError() {
			return &RequestError{Provider: provider, StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 512)}
		}
		return nil
	})
}

// BreakerStates reports the circuit state of every family used so far
func (c *Client) BreakerStates() map[string]string {
	return c.breakers.States()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
