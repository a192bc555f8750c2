// Package upstream provides the HTTP client used for all calls to
// subordinate systems. It wraps net/http with a circuit breaker and,
// where the caller allows it, bounded retry with exponential backoff.
// Enrichment calls are best-effort and keep the retry budget; the proxy
// bridge makes exactly one attempt per inbound call and disables it.
package upstream

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the breaker rejects a call outright.
var ErrCircuitOpen = errors.New("upstream circuit open")

// Config holds configuration for an upstream client.
type Config struct {
	// Name identifies the subordinate system for breaker naming.
	Name string

	// Timeout bounds a single HTTP attempt. Default: 10s.
	Timeout time.Duration

	// Retries is the number of retry attempts after the first. Zero means
	// a single attempt.
	Retries uint64

	// InitialInterval and MaxInterval shape the retry backoff.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// BreakerTimeout is how long the breaker stays open before probing
	// half-open. Default: 30s.
	BreakerTimeout time.Duration
}

// DefaultConfig returns the configuration used for best-effort enrichment
// calls: short timeout, a couple of quick retries.
func DefaultConfig(name string) Config {
	return Config{
		Name:            name,
		Timeout:         3 * time.Second,
		Retries:         2,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		BreakerTimeout:  30 * time.Second,
	}
}

// SingleAttemptConfig returns the configuration used by the proxy bridge:
// one attempt, no retry. Per-call deadlines come from the request context.
func SingleAttemptConfig(name string) Config {
	return Config{
		Name:           name,
		Timeout:        0, // context deadline governs
		Retries:        0,
		BreakerTimeout: 30 * time.Second,
	}
}

// Client is a resilient HTTP client for one subordinate system.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	config     Config
}

// NewClient creates a client from the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = time.Second
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && ratio >= 0.5
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		config:     cfg,
	}
}

// Do executes the request through the breaker, retrying transient failures
// (network errors, 5xx) up to the configured retry budget. The response,
// including non-2xx responses, is the caller's to close and interpret.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.Retries), ctx)

	var lastResp *http.Response

	operation := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				return r, &serverError{status: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}
		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		// A 5xx that exhausted the budget still carries a usable response.
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}
	return lastResp, nil
}

// State exposes the breaker state for health reporting.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

type serverError struct {
	status int
}

func (e *serverError) Error() string {
	return "server error: " + http.StatusText(e.status)
}
