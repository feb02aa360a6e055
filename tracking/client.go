// Package tracking is a thin client for an experiment-tracking service's
// HTTP API. It supports listing runs with their configurations, fetching
// metric history, and bulk-downloading runs into the on-disk layout the rest
// of the toolkit consumes (config.yaml + history.csv per run directory).
package tracking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/runforge/runkit/logger"
)

// HeaderXRequestID carries a per-request correlation ID.
const HeaderXRequestID = "X-Request-ID"

// Client is the REST surface the service wrapper is built on.
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)
}

// Request is an HTTP request against the tracking API, relative to the
// client's base URL.
type Request struct {
	Path    string
	Query   url.Values
	Headers map[string]string
	Body    []byte
}

// Response is an HTTP response with timing information.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	Elapsed    time.Duration
}

// APIError is a non-2xx response from the tracking service. Client errors
//(4xx) are never retried.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tracking: api error: status %d: %s", e.StatusCode, e.Body)
}

// Config holds the REST client configuration.
type Config struct {
	// BaseURL is the service root, e.g. "https://api.tracker.example".
	BaseURL string
	// APIKey is sent as a bearer token when non-empty.
	APIKey string
	// Timeout bounds each HTTP attempt. Default 30s.
	Timeout time.Duration
	// MaxRetries is the number of additional attempts after a transport
	// error or 5xx response. Default 2.
	MaxRetries int
	// RetryDelay is the fixed pause between attempts. Default 500ms.
	RetryDelay time.Duration
	// RateLimit caps outgoing requests per second; 0 disables limiting.
	RateLimit float64
	// DefaultHeaders are added to every request.
	DefaultHeaders map[string]string
}

// RESTClient implements Client over net/http.
type RESTClient struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     logger.Logger
}

var _ Client = (*RESTClient)(nil)

// NewClient creates a RESTClient. A nil log discards request logging.
func NewClient(cfg Config, log logger.Logger) (*RESTClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("tracking: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("tracking: invalid base URL: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	if log == nil {
		log = logger.Nop()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &RESTClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		log:     log,
	}, nil
}

// Get performs a GET request.
func (c *RESTClient) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, http.MethodGet, req)
}

// Do performs a request with bounded retries. 5xx responses and transport
// errors are retried; 4xx responses fail immediately with an APIError.
func (c *RESTClient) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.cfg.RetryDelay):
			}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := c.attempt(ctx, method, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return nil, err
		}
		c.log.Warn().Err(err).Int("attempt", attempt+1).Str("path", req.Path).
			Msg("tracking request failed")
	}
	return nil, fmt.Errorf("tracking: request failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

func (c *RESTClient) attempt(ctx context.Context, method string, req *Request) (*Response, error) {
	u := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, strings.NewReader(string(req.Body)))
	if err != nil {
		return nil, fmt.Errorf("tracking: build request: %w", err)
	}

	for k, v := range c.cfg.DefaultHeaders {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	if httpReq.Header.Get(HeaderXRequestID) == "" {
		httpReq.Header.Set(HeaderXRequestID, uuid.NewString())
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("tracking: %s %s: %w", method, req.Path, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("tracking: read response body: %w", err)
	}

	c.log.Debug().Str("method", method).Str("path", req.Path).
		Int("status", httpResp.StatusCode).Dur("elapsed", elapsed).
		Msg("tracking request")

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return nil, &APIError{StatusCode: httpResp.StatusCode, Body: truncate(string(body), 256)}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
		Elapsed:    elapsed,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
