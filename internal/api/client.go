// Package api is the typed client for the FastOrder backend REST API. It
// injects the bearer token, classifies errors, retries rate-limited calls,
// and fires a global invalidation hook on any 401.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TokenSource supplies the current bearer token; "" means unauthenticated.
// Satisfied by *session.Manager.
type TokenSource interface {
	Token() string
}

// Client talks to one backend. Safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
	retry   RetryPolicy

	mu            sync.Mutex
	onAuthExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithRetryPolicy replaces the default 429 retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

// New creates a client for baseURL. tokens may be nil for a client that only
// hits public endpoints.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 15 * time.Second},
		tokens:  tokens,
		retry:   DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnAuthExpired registers the hook run exactly once per 401 response. The
// app uses it to clear session and cart together and bounce to login.
func (c *Client) OnAuthExpired(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAuthExpired = fn
}

func (c *Client) authExpired() {
	c.mu.Lock()
	fn := c.onAuthExpired
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// do runs one API call: marshal body, attach headers, apply the retry
// policy, decode into out (which may be nil), and classify failures.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	requestID := uuid.NewString()

	for attempt := 1; ; attempt++ {
		resp, err := c.send(ctx, method, path, payload, requestID)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}

		if c.retry.retryable(resp.StatusCode) && attempt < c.retry.attempts() {
			drain(resp)
			if err := c.retry.wait(ctx); err != nil {
				return fmt.Errorf("%s %s: %w", method, path, err)
			}
			continue
		}

		return c.finish(resp, out)
	}
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, requestID string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return c.httpc.Do(req)
}

func (c *Client) finish(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.authExpired()
	}

	return newError(resp.StatusCode, readErrorMessage(resp.Body))
}

// readErrorMessage pulls the message from an {"error": ...} or
// {"message": ...} body.
func readErrorMessage(r io.Reader) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
