// Package exa provides a client and result normalizer for the Exa search API.
package exa

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the Exa API.
	DefaultBaseURL = "https://api.exa.ai"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// Client is an Exa API client.
type Client struct {
	http    *resty.Client
	logger  arbor.ILogger
	limiter *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.http.SetBaseURL(baseURL)
	}
}

// WithTimeout sets a custom HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewClient creates a new Exa API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetTimeout(DefaultTimeout).
			SetHeader("x-api-key", apiKey).
			SetHeader("Content-Type", "application/json"),
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error from the Exa API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("exa API error: %s (status %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// summaryConfig requests a structured summary per result.
type summaryConfig struct {
	Schema map[string]interface{} `json:"schema,omitempty"`
}

// contentsConfig selects which content fields Exa attaches to each result.
type contentsConfig struct {
	Text    bool           `json:"text,omitempty"`
	Summary *summaryConfig `json:"summary,omitempty"`
}

// searchRequest is the POST /search payload.
type searchRequest struct {
	Query      string          `json:"query"`
	Type       string          `json:"type"`
	Category   string          `json:"category"`
	NumResults int             `json:"numResults"`
	Contents   *contentsConfig `json:"contents,omitempty"`
}

// searchResult is one raw Exa hit before normalization.
type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Author  string `json:"author"`
	Text    string `json:"text"`
	Summary string `json:"summary"`
	Image   string `json:"image"`
}

// searchResponse is the POST /search response envelope.
type searchResponse struct {
	RequestID string         `json:"requestId"`
	Results   []searchResult `json:"results"`
}

// search performs a POST /search call.
func (c *Client) search(ctx context.Context, req *searchRequest) (*searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("category", req.Category).
			Int("numResults", req.NumResults).
			Msg("Exa API request")
	}

	var result searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/search")
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.IsError() {
		return nil, &APIError{
			StatusCode: resp.StatusCode(),
			Message:    string(resp.Body()),
			Endpoint:   "/search",
		}
	}

	return &result, nil
}
