// Package upstream provides the outbound HTTP client shared by every
// third-party provider: a fixed User-Agent, exponential backoff on
// transient failures, and an optional request rate limit.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Carter-75/SnowRemovel/internal/logger"
	"golang.org/x/time/rate"
)

// maxErrorBody bounds how much of a failed response body is kept.
const maxErrorBody = 1024

// retryableStatus lists the HTTP statuses worth another attempt.
var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Config is the outbound request policy.
type Config struct {
	UserAgent         string
	Timeout           time.Duration
	MaxAttempts       int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	// Limiter, when set, gates every attempt including retries.
	Limiter *rate.Limiter
}

// DefaultConfig returns the policy used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		UserAgent:         "SnowRemovel/1.0",
		Timeout:           10 * time.Second,
		MaxAttempts:       3,
		InitialDelay:      time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
	}
}

// StatusError is returned by GetJSON for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Client performs outbound requests with the configured retry policy.
type Client struct {
	cfg  Config
	http *http.Client
	log  *logger.Logger
}

// New creates a Client. Zero-valued policy fields fall back to DefaultConfig.
func New(cfg Config, log *logger.Logger) *Client {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.BackoffMultiplier < 1 {
		cfg.BackoffMultiplier = 1
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.MaxDelay = cfg.InitialDelay
	}
	if log == nil {
		log = logger.Nop()
	}

	c := &Client{cfg: cfg, log: log}
	c.http = &http.Client{
		Transport: &retryTransport{client: c, base: http.DefaultTransport},
	}
	return c
}

// HTTPClient exposes the retrying client for SDKs that accept an
// *http.Client of their own.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// Do sends req, retrying transport errors and retryable statuses.
// When every attempt ends in a retryable status the last response is
// returned so the caller sees the real status.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.http.Do(req.WithContext(ctx))
}

// GetJSON issues a GET and decodes a 2xx JSON body into out.
// Any other status yields a *StatusError.
func (c *Client) GetJSON(ctx context.Context, url string, headers http.Header, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Host, err)
	}
	return nil
}

// IsRetryableStatus reports whether status is retried by the client.
func IsRetryableStatus(status int) bool {
	return retryableStatus[status]
}

// backoff returns the delay before attempt n+1 (n starts at 1).
func (c *Client) backoff(attempt int) time.Duration {
	delay := float64(c.cfg.InitialDelay)
	for i := 1; i < attempt; i++ {
		delay *= c.cfg.BackoffMultiplier
		if delay >= float64(c.cfg.MaxDelay) {
			return c.cfg.MaxDelay
		}
	}
	return time.Duration(delay)
}

type retryTransport struct {
	client *Client
	base   http.RoundTripper
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c := t.client
	ctx := req.Context()

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if c.cfg.Limiter != nil {
			if err := c.cfg.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		attemptReq, err := t.prepare(req.WithContext(attemptCtx))
		if err != nil {
			cancel()
			return nil, err
		}

		resp, err := t.base.RoundTrip(attemptReq)
		last := attempt == c.cfg.MaxAttempts

		switch {
		case err != nil:
			cancel()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if last {
				break
			}
			c.log.Warn("Upstream request failed, retrying", map[string]interface{}{
				"host":    req.URL.Host,
				"attempt": attempt,
				"error":   err.Error(),
			})
		case retryableStatus[resp.StatusCode] && !last:
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
			resp.Body.Close()
			cancel()
			c.log.Warn("Upstream returned retryable status, retrying", map[string]interface{}{
				"host":    req.URL.Host,
				"attempt": attempt,
				"status":  resp.StatusCode,
			})
		default:
			resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		}

		if last {
			break
		}
		if err := sleep(ctx, c.backoff(attempt)); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", c.cfg.MaxAttempts, lastErr)
}

// prepare clones req for one attempt and stamps the standard headers.
func (t *retryTransport) prepare(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return nil, fmt.Errorf("request body for %s cannot be replayed", req.URL.Host)
		}
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		out.Body = body
	}

	out.Header.Set("User-Agent", t.client.cfg.UserAgent)
	if out.Header.Get("Accept") == "" {
		out.Header.Set("Accept", "application/json")
	}
	return out, nil
}

// cancelOnClose releases the per-attempt timeout once the body is consumed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
