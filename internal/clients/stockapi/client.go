// Package stockapi provides a client for the stock backend REST API
package stockapi

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

	"golang.org/x/time/rate"

	"github.com/bobmcallan/stockview/internal/common"
	"github.com/bobmcallan/stockview/internal/models"
)

const (
	DefaultBaseURL   = "http://localhost:8000/api"
	DefaultTimeout   = 20 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements interfaces.BackendClient
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new backend client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a failed backend response
type APIError struct {
	StatusCode int
	Detail     string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned %d (endpoint: %s)", e.StatusCode, e.Endpoint)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Detail returns the human-readable detail of a backend error, or fallback
// when err carries none (transport failures, decode errors).
func Detail(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if fallback != "" {
		return fallback
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// do performs a rate-limited request. body is JSON-encoded when non-nil;
// result is decoded from a 2xx response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("method", method).Str("url", reqURL).Msg("Backend request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Detail:     extractDetail(raw),
			Endpoint:   path,
		}
		c.logger.Debug().
			Int("status", resp.StatusCode).
			Str("endpoint", path).
			Str("detail", apiErr.Detail).
			Msg("Backend error response")
		return apiErr
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// extractDetail pulls a message out of a FastAPI-style error body.
// "detail" is either a string or a list of {msg} validation entries.
func extractDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if len(body.Detail) > 0 {
		var s string
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(body.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return body.Error
}

func marketParams(ticker string, rng models.Range, interval models.Interval) url.Values {
	if rng == "" {
		rng = models.DefaultRange
	}
	if interval == "" {
		interval = models.DefaultInterval
	}
	params := url.Values{}
	params.Set("ticker", ticker)
	params.Set("range", string(rng))
	params.Set("interval", string(interval))
	return params
}

// GetStock retrieves candles for a ticker
func (c *Client) GetStock(ctx context.Context, ticker string, rng models.Range, interval models.Interval) (*models.StockSeries, error) {
	var out models.StockSeries
	if err := c.do(ctx, http.MethodGet, "/stock", marketParams(ticker, rng, interval), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetIndicators retrieves indicator series for a ticker
func (c *Client) GetIndicators(ctx context.Context, ticker string, rng models.Range, interval models.Interval) (*models.IndicatorResponse, error) {
	var out models.IndicatorResponse
	if err := c.do(ctx, http.MethodGet, "/indicators", marketParams(ticker, rng, interval), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the backend is reachable
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}
