// internal/common/http/client.go
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "kpi-dashboard/internal/common/errors"

	"golang.org/x/time/rate"
)

// Client is the transport under the upstream API clients. It paces requests
// with a rate limit and re-sends attempts whose failure is retryable.
type Client struct {
	base         http.RoundTripper
	timeout      time.Duration
	limiter      *rate.Limiter
	maxRetries   int
	initialDelay time.Duration
}

type Option func(*Client)

// WithRateLimit caps outgoing requests at perSecond with the given burst.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithRetries sets the most times a failed attempt is re-sent and the first
// backoff delay, doubled on every attempt. Each failure kind is further
// capped by its own retry count.
func WithRetries(maxRetries int, initialDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.initialDelay = initialDelay
	}
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.base = rt
	}
}

func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		base:         http.DefaultTransport,
		timeout:      timeout,
		initialDelay: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HTTPClient returns a standard client that sends through c.
func (c *Client) HTTPClient() *http.Client {
	return &http.Client{Timeout: c.timeout, Transport: c}
}

// RoundTrip implements http.RoundTripper. Bodies are replayed through
// GetBody; a request whose body cannot be replayed is sent once. The last
// response is returned as-is when retries run out.
func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	delay := c.initialDelay

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		out, err := rewind(req, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := c.base.RoundTrip(out)
		failure := classify(ctx, resp, err)
		if failure == nil || !apperrors.IsRetryable(failure) || attempt >= c.retryBudget(failure.Code) ||
			!replayable(req) || ctx.Err() != nil {
			return resp, err
		}

		wait := delay
		if resp != nil {
			if ra := retryAfter(resp); ra > 0 {
				wait = ra
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
}

func (c *Client) retryBudget(code apperrors.ErrorCode) int {
	return min(c.maxRetries, apperrors.GetRetryCount(code))
}

// classify returns the failure of one attempt, nil when the response is final.
func classify(ctx context.Context, resp *http.Response, err error) *apperrors.StandardError {
	switch {
	case err != nil && ctx.Err() != nil:
		return apperrors.NewSourceTimeoutError("", err)
	case err != nil:
		return apperrors.NewSourceUnavailableError("", err)
	case resp.StatusCode == http.StatusTooManyRequests:
		return apperrors.NewSourceRateLimitedError("")
	case resp.StatusCode >= http.StatusInternalServerError:
		return apperrors.NewSourceUnavailableError("", fmt.Errorf("status %d", resp.StatusCode))
	}
	return nil
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 || req.GetBody == nil {
		return req, nil
	}
	out := req.Clone(req.Context())
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	out.Body = body
	return out, nil
}

func retryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if d, err := time.ParseDuration(v + "s"); err == nil {
		return d
	}
	return 0
}
