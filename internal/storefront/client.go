// Package storefront is the HTTP client for the remote Trinity storefront
// API. It carries the session's bearer token on every request and exposes
// thin typed wrappers over the product, user and statistics endpoints.
package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TokenSource yields the bearer token attached to outgoing requests. An
// empty token sends the request unauthenticated and lets the remote API
// reject it.
type TokenSource interface {
	Token() string
}

// StatusError reports a non-2xx response from the storefront API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("storefront: status %d", e.Code)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Client talks to the storefront API on behalf of one session.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Factory builds per-session clients sharing one base URL and timeout.
type Factory struct {
	baseURL string
	timeout time.Duration
}

// NewFactory constructs a Factory.
func NewFactory(baseURL string, timeout time.Duration) *Factory {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Factory{baseURL: baseURL, timeout: timeout}
}

// For returns a client whose requests carry tokens from the given source.
func (f *Factory) For(tokens TokenSource) *Client {
	return &Client{
		baseURL: f.baseURL,
		httpClient: &http.Client{
			Timeout:   f.timeout,
			Transport: &bearerTransport{tokens: tokens},
		},
	}
}

// NewClient constructs a standalone client, mainly for tests.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return NewFactory(baseURL, 0).For(tokens)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("storefront: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storefront: %s %s: %w", method, path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("storefront: decode %s %s: %w", method, path, err)
	}
	return nil
}
