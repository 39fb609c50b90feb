// Package api implements the typed REST client for the finance backend.
//
// The client translates logical operations into HTTP requests and classifies
// every failure as transport, auth-expired, or request-rejected (see errors.go).
// The 401 path is the only one with a side effect: it clears the token store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"findash/internal/log"
)

// TokenSource provides the bearer token attached to authenticated requests.
// Clear is invoked exactly once per 401 response.
type TokenSource interface {
	Token() (string, bool)
	Clear() error
}

// Client is an HTTP client for the finance backend REST API.
// It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	logger  *log.Logger
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Tokens  TokenSource
	Logger  *log.Logger

	// HTTPClient overrides the pooled default, mainly for tests.
	HTTPClient *http.Client
}

// New builds a Client for the given base URL.
func New(opts Options) (*Client, error) {
	base := strings.TrimSuffix(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("api: missing base URL")
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("api: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api: base URL scheme must be http or https, got %q", u.Scheme)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = newPooledHTTPClient(timeout)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentAPI)
	}

	return &Client{
		baseURL: u,
		http:    httpClient,
		tokens:  opts.Tokens,
		logger:  logger,
	}, nil
}

// newPooledHTTPClient creates an HTTP client with connection pooling and
// per-phase timeouts for the backend API.
func newPooledHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// do issues one request and decodes the response into out (when non-nil).
// Failures are always returned as *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Request failed before response",
			log.FieldMethod, method,
			log.FieldPath, path,
			log.FieldError, err.Error())
		return transportError(err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Request completed",
		log.FieldMethod, method,
		log.FieldPath, path,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode == http.StatusUnauthorized {
		// Session is gone: drop persisted credentials and stop. No retry.
		if c.tokens != nil {
			if clearErr := c.tokens.Clear(); clearErr != nil {
				c.logger.ErrorContext(ctx, "Failed to clear token store after 401",
					log.FieldError, clearErr.Error())
			}
		}
		return authExpiredError(serverMessage(resp.Body))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejectedError(resp.StatusCode, serverMessage(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return decodeError(resp.StatusCode, err)
	}
	return nil
}

// serverMessage extracts a human-readable message from an error response
// body. The backend uses {"detail": "..."}; anything else yields "".
func serverMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err != nil {
		// detail can be a structured validation payload; surface it raw
		return strings.TrimSpace(string(envelope.Detail))
	}
	return strings.TrimSpace(detail)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}
