// Package rest is the JSON-over-HTTP transport shared by the helpdesk adapters.
// It owns authentication and retrying of throttled or failed requests.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const maxErrorBody = 2048

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// Response is a successful HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Options configures a Client.
type Options struct {
	BaseURL         string
	Username        string
	Password        string
	Timeout         time.Duration
	MaxRetries      int
	InitialInterval time.Duration
	HTTPClient      *http.Client
	Logger          *zap.Logger
}

// Client issues authenticated JSON requests against one helpdesk.
type Client struct {
	baseURL         string
	username        string
	password        string
	http            *http.Client
	maxRetries      int
	initialInterval time.Duration
	logger          *zap.Logger
}

// New builds a Client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	interval := opts.InitialInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Client{
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		username:        opts.Username,
		password:        opts.Password,
		http:            httpClient,
		maxRetries:      maxRetries,
		initialInterval: interval,
		logger:          logger,
	}
}

// BaseURL returns the configured base URL without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends body (JSON-encoded when non-nil) to target, which is either a path
// relative to the base URL or an absolute URL. 429 responses and connection
// failures are retried with exponential backoff. 5xx responses and other
// transport errors are retried only for GET and HEAD: a write may already
// have been applied, and sending it again would duplicate a ticket or comment.
// Any other non-2xx status is returned immediately as a *StatusError.
func (c *Client) Do(ctx context.Context, method, target string, body any) (*Response, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		payload = b
	}
	url := c.resolve(target)
	idempotent := method == http.MethodGet || method == http.MethodHead

	var resp *Response
	attempt := 0
	operation := func() error {
		attempt++
		r, err := c.send(ctx, method, url, payload)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			if !idempotent && !isDialError(err) {
				return backoff.Permanent(err)
			}
			c.logger.Debug("helpdesk request failed", zap.String("url", url), zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		if r.StatusCode >= 200 && r.StatusCode < 300 {
			resp = r
			return nil
		}
		statusErr := &StatusError{Method: method, URL: url, StatusCode: r.StatusCode, Body: truncate(string(r.Body))}
		if r.StatusCode == http.StatusTooManyRequests || (idempotent && r.StatusCode >= 500) {
			c.logger.Debug("helpdesk request throttled or failed",
				zap.String("url", url),
				zap.Int("status", r.StatusCode),
				zap.Int("attempt", attempt))
			return statusErr
		}
		return backoff.Permanent(statusErr)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.maxRetries)), ctx)
	if err := backoff.Retry(operation, retry); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, url string, payload []byte) (*Response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: data}, nil
}

// isDialError reports a failure to connect, before any request bytes were sent.
func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func (c *Client) resolve(target string) string {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return c.baseURL + target
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody] + "..."
}
