// Package extractor is a thin client for the sec-api.io Extractor API,
// which returns a single named item from a filing by URL.
package extractor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Extractor API.
const defaultBaseURL = "https://api.sec-api.io/extractor"

// Item identifiers accepted by the API.
const (
	ItemRiskFactorsQuarterly = "part2item1a" // 10-Q Part II Item 1A
	ItemRiskFactorsAnnual    = "1A"          // 10-K Item 1A
)

// Format values accepted by the API.
const (
	FormatHTML = "html"
	FormatText = "text"
)

// Client defines the Extractor API operations.
type Client interface {
	// GetSection fetches one item of a filing. The returned string is in
	// the requested format.
	GetSection(ctx context.Context, filingURL, item, format string) (string, error)
}

// APIError is returned when the API responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("extractor: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsAuthError reports whether err is a credential failure from the API.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !eris.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(base string) Option {
	return func(c *httpClient) { c.baseURL = base }
}

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an Extractor API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) GetSection(ctx context.Context, filingURL, item, format string) (string, error) {
	q := url.Values{}
	q.Set("url", filingURL)
	q.Set("item", item)
	q.Set("type", format)
	q.Set("token", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", eris.Wrap(err, "extractor: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "extractor: get section")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "extractor: read body")
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	return string(body), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
