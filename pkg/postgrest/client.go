// Package postgrest is a minimal client for hosted PostgREST table APIs
// (the REST surface exposed by managed Postgres providers).
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/onedotone/landing-api/pkg/circuitbreaker"
	"github.com/onedotone/landing-api/pkg/retry"
)

const (
	DefaultTimeout = 10 * time.Second
	restPath       = "/rest/v1/"
	maxErrorBody   = 64 << 10
)

var ErrNotConfigured = errors.New("postgrest: endpoint URL and API key are required")

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func (c *Config) IsConfigured() bool {
	return c != nil && strings.TrimSpace(c.URL) != "" && strings.TrimSpace(c.APIKey) != ""
}

// Error is a response the server produced; Code carries the Postgres SQLSTATE when present.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgrest: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("postgrest: status %d: %s", e.StatusCode, e.Message)
}

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "postgrest: transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	reads      retry.Policy
	breaker    circuitbreaker.CircuitBreaker
}

// NewClient validates the configuration up front so a misconfigured store
// is rejected before any request is attempted.
func NewClient(cfg *Config) (*Client, error) {
	if !cfg.IsConfigured() {
		return nil, ErrNotConfigured
	}

	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.URL), "/"))
	if err != nil {
		return nil, fmt.Errorf("postgrest: invalid URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("postgrest: unsupported URL scheme %q", base.Scheme)
	}
	if base.Host == "" {
		return nil, errors.New("postgrest: URL is missing a host")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:    base,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout},
		reads: retry.NewExponentialBackoff(&retry.Config{
			MaxAttempts: 3,
			BaseDelay:   200 * time.Millisecond,
			MaxDelay:    time.Second,
			Multiplier:  2,
			Retryable:   retryableRead,
		}),
		breaker: circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
			Name:             "postgrest",
			FailureThreshold: 5,
			RecoveryTimeout:  30 * time.Second,
			SuccessThreshold: 1,
			IsFailure:        upstreamFailure,
		}),
	}, nil
}

// Insert creates one row and decodes the stored representation into out when out is non-nil.
func (c *Client) Insert(ctx context.Context, table string, row any, out any) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("postgrest: encode row: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, table, nil, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if out != nil {
		req.Header.Set("Prefer", "return=representation")
	} else {
		req.Header.Set("Prefer", "return=minimal")
	}

	return c.do(req, out)
}

// Select runs a filtered read; query holds PostgREST operators such as {"id": ["eq.4"]}.
// Reads are retried on gateway errors; writes never are.
func (c *Client) Select(ctx context.Context, table string, query url.Values, out any) error {
	return c.reads.Execute(ctx, func(ctx context.Context) error {
		req, err := c.newRequest(ctx, http.MethodGet, table, query, nil)
		if err != nil {
			return err
		}
		return c.do(req, out)
	})
}

func retryableRead(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return false
	}

	var transportErr *TransportError
	return errors.As(err, &transportErr) && !errors.Is(err, context.Canceled)
}

// upstreamFailure counts unreachable or failing servers against the breaker.
// Client errors such as a duplicate key are the caller's problem.
func upstreamFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError
	}

	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// Ping asks for a single-column, zero-row read of table.
func (c *Client) Ping(ctx context.Context, table string) error {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("limit", "0")
	return c.Select(ctx, table, q, nil)
}

func (c *Client) newRequest(ctx context.Context, method, table string, query url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL.JoinPath(restPath, table)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("postgrest: build request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// do fails fast with a TransportError wrapping circuitbreaker.ErrCircuitOpen
// while the store keeps failing.
func (c *Client) do(req *http.Request, out any) error {
	err := c.breaker.Call(func() error {
		return c.send(req, out)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return &TransportError{Err: err}
	}
	return err
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("postgrest: decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(raw) > 0 && json.Unmarshal(raw, apiErr) != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}
