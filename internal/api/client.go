package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the current bearer credential, or "" when anonymous.
type TokenSource interface {
	Token() string
}

// Notifier receives authorization failures observed on the wire.
// Satisfied by session.Guard.
type Notifier interface {
	ReportUnauthorized()
}

// Client talks to the SciNews REST API. Every response funnels through the
// same path: bearer attachment, status logging, error classification, and
// 401 routing to the notifier.
type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
	token   TokenSource
	guard   Notifier
}

// Option mutates client configuration.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (timeouts live there).
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		if httpc != nil {
			c.httpc = httpc
		}
	}
}

// WithLogger injects a structured logger for response logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTokenSource attaches bearer credentials to outgoing requests.
func WithTokenSource(token TokenSource) Option {
	return func(c *Client) { c.token = token }
}

// WithNotifier routes authorization failures to the session guard.
func WithNotifier(guard Notifier) Option {
	return func(c *Client) { c.guard = guard }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type detailBody struct {
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindValidation, Err: fmt.Errorf("encoding request body: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &Error{Kind: KindValidation, Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn("api request failed", "method", method, "path", path, "error", err)
		return &Error{Kind: KindTransient, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("api response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode >= 400 {
		var detail detailBody
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = json.Unmarshal(data, &detail)

		kind := classify(resp.StatusCode, detail.Detail)
		if kind == KindUnauthorized && c.guard != nil {
			c.guard.ReportUnauthorized()
		}
		c.logger.Warn("api error response",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"detail", detail.Detail)
		return &Error{Kind: kind, Status: resp.StatusCode, Detail: detail.Detail}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindTransient, Err: fmt.Errorf("decoding response: %w", err)}
		}
	}
	return nil
}
