// Package fetcher downloads filing documents and reference JSON from SEC
// endpoints with retry, per-host rate limiting, and status accounting.
package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures the HTTP fetcher. The struct is read once at
// construction and never mutated afterward; the identifying User-Agent is
// process-wide configuration, not ambient state.
type Options struct {
	UserAgent    string
	Timeout      time.Duration
	MaxRetries   int
	RateLimiters map[string]*rate.Limiter
	Counter      *StatusCounter
}

// HTTPFetcher fetches text and JSON using net/http with retry and rate limiting.
type HTTPFetcher struct {
	client   *http.Client
	opts     Options
	limiters map[string]*rate.Limiter
	counter  *StatusCounter
}

// DefaultRateLimiters returns the default per-host rate limiters, sized for
// SEC fair-use limits.
func DefaultRateLimiters() map[string]*rate.Limiter {
	return map[string]*rate.Limiter{
		"www.sec.gov":    rate.NewLimiter(10, 10),
		"data.sec.gov":   rate.NewLimiter(10, 10),
		"api.sec-api.io": rate.NewLimiter(5, 5),
	}
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 5
	}
	if opts.Counter == nil {
		opts.Counter = NewStatusCounter()
	}
	limiters := make(map[string]*rate.Limiter)
	for k, v := range opts.RateLimiters {
		limiters[k] = v
	}
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: limiters,
		counter:  opts.Counter,
	}
}

// Counter returns the fetcher's status counter.
func (f *HTTPFetcher) Counter() *StatusCounter {
	return f.counter
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rate.NewLimiter(20, 20)
	}
	if lim, ok := f.limiters[u.Host]; ok {
		return lim
	}
	return rate.NewLimiter(20, 20)
}

// retryableStatus lists response codes that trigger a retry. SEC endpoints
// throttle with 403 as well as 429.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusForbidden,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (f *HTTPFetcher) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, int, error) {
	var lastErr error
	lastCode := 0

	for attempt := range f.opts.MaxRetries {
		lim := f.limiterFor(req.URL.String())
		if err := lim.Wait(ctx); err != nil {
			return nil, 0, eris.Wrap(err, "rate limiter wait")
		}

		cloned := req.Clone(ctx)
		resp, err := f.client.Do(cloned)
		if err != nil {
			lastErr = err
			lastCode = 0
			zap.L().Warn("http request failed, retrying",
				zap.String("url", req.URL.String()),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			f.backoff(ctx, attempt)
			continue
		}

		lastCode = resp.StatusCode
		if retryableStatus(resp.StatusCode) {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("http %d from %s", resp.StatusCode, req.URL.String())
			zap.L().Warn("retryable status, backing off",
				zap.String("url", req.URL.String()),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			f.backoff(ctx, attempt)
			continue
		}

		return resp, resp.StatusCode, nil
	}

	return nil, lastCode, eris.Wrap(lastErr, "all retries exhausted")
}

func (f *HTTPFetcher) backoff(ctx context.Context, attempt int) {
	base := time.Second
	maxBackoff := 30 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(d)/2 + 1))
	d = d + jitter

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// FetchText fetches the URL and returns the response body as text. The
// final outcome (status code, or 0 for a transport failure) is recorded in
// the status counter.
func (f *HTTPFetcher) FetchText(ctx context.Context, rawURL string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.counter.Bump(0)
		return "", 0, eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	resp, code, err := f.doWithRetry(ctx, req)
	if err != nil {
		f.counter.Bump(code)
		return "", code, eris.Wrap(err, "fetch text")
	}
	defer resp.Body.Close() //nolint:errcheck

	f.counter.Bump(code)
	if code != http.StatusOK {
		return "", code, eris.Errorf("fetch text: unexpected status %d from %s", code, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", code, eris.Wrap(err, "read body")
	}
	return string(body), code, nil
}

// GetJSON fetches the URL and decodes the response into v.
func (f *HTTPFetcher) GetJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.counter.Bump(0)
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, code, err := f.doWithRetry(ctx, req)
	if err != nil {
		f.counter.Bump(code)
		return eris.Wrap(err, "get json")
	}
	defer resp.Body.Close() //nolint:errcheck

	f.counter.Bump(code)
	if code != http.StatusOK {
		return eris.Errorf("get json: unexpected status %d from %s", code, rawURL)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return eris.Wrap(err, "decode json")
	}
	return nil
}
