// Package httpx provides a retrying HTTP transport shared by the
// catalog, metadata, and delivery clients.
package httpx

import (
	"log/slog"
	"math/rand"
	"net/http"
	"time"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = 500 * time.Millisecond
	defaultMaxDelay     = 8 * time.Second
)

// Transport wraps an http.RoundTripper with bounded retry and
// exponential backoff. Connection errors, 5xx responses, and 429 are
// retried; other 4xx responses are treated as permanent.
type Transport struct {
	base         http.RoundTripper
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	logger       *slog.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithMaxAttempts sets the total attempt count (first try included).
func WithMaxAttempts(n int) Option {
	return func(t *Transport) {
		if n > 0 {
			t.maxAttempts = n
		}
	}
}

// WithInitialDelay sets the backoff delay before the first retry.
func WithInitialDelay(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.initialDelay = d
		}
	}
}

// WithLogger sets a logger for retry attempts.
func WithLogger(log *slog.Logger) Option {
	return func(t *Transport) {
		t.logger = log.With("component", "httpx")
	}
}

// NewTransport creates a retrying transport around base. A nil base
// uses http.DefaultTransport.
func NewTransport(base http.RoundTripper, opts ...Option) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{
		base:         base,
		maxAttempts:  defaultMaxAttempts,
		initialDelay: defaultInitialDelay,
		maxDelay:     defaultMaxDelay,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RoundTrip implements http.RoundTripper. Requests with a non-nil Body
// must set GetBody (true for everything net/http builds from a buffer)
// so the body can be replayed on retry.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error

	delay := t.initialDelay
	for attempt := 1; ; attempt++ {
		if attempt > 1 && req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, bodyErr
			}
			req.Body = body
		}

		resp, err = t.base.RoundTrip(req)
		if !t.shouldRetry(resp, err) || attempt >= t.maxAttempts {
			return resp, err
		}

		// Drain the failed response so the connection can be reused.
		if resp != nil {
			resp.Body.Close()
		}

		t.logger.Warn("retrying request",
			"method", req.Method,
			"url", req.URL.Redacted(),
			"attempt", attempt,
			"delay", delay,
		)

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(jitter(delay)):
		}

		delay *= 2
		if delay > t.maxDelay {
			delay = t.maxDelay
		}
	}
}

func (t *Transport) shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		// Transport-level failure (connect refused, reset, timeout).
		return true
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return false
}

// jitter spreads a delay to 50-100% of its nominal value.
func jitter(d time.Duration) time.Duration {
	return d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
}

// NewClient builds an http.Client with the retrying transport and the
// given per-request timeout.
func NewClient(timeout time.Duration, opts ...Option) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: NewTransport(nil, opts...),
	}
}
