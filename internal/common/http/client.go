// Package http is the JSON-over-HTTPS client shared by the REST integrations.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "lead-intake/internal/common/errors"
)

const maxErrorBody = 4 << 10

// StatusError is returned for any response with status >= 400. Body holds at
// most the first 4 KiB of the response.
type StatusError struct {
	Service    string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// AsStatusError returns the *StatusError in err's chain, if any.
func AsStatusError(err error) (*StatusError, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

type Client struct {
	service    string
	baseURL    string
	headers    http.Header
	httpClient *http.Client
}

type Option func(*Client)

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithHTTPClient swaps the underlying transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(service, baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: http.Header{},
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	c.headers.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service names the upstream in errors and logs.
func (c *Client) Service() string { return c.service }

// DoJSON sends body (if non-nil) as JSON to baseURL+path and decodes a 2xx
// response into out (if non-nil). Failures are classified as:
//   - 401/403: AUTHENTICATION_FAILED
//   - deadline exceeded: TIMEOUT
//   - anything else: EXTERNAL_SERVICE_ERROR
//
// The *StatusError stays reachable through errors.As for callers that need to
// inspect the upstream body.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", c.service, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", c.service, err)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return apperrors.NewTimeoutError(c.service, err)
		}
		return apperrors.NewExternalServiceError(c.service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{Service: c.service, StatusCode: resp.StatusCode, Body: raw}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return apperrors.NewAuthenticationError(c.service, statusErr)
		}
		return apperrors.NewExternalServiceError(c.service, statusErr)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.NewExternalServiceError(c.service, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
