package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-api-key", WithBaseURL(srv.URL))
	return srv, c
}

func TestGetSection(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantText   string
		wantErr    bool
		wantAPIErr bool
		wantStatus int
	}{
		{
			name: "happy path",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				q := r.URL.Query()
				assert.Equal(t, "https://www.sec.gov/Archives/edgar/data/320193/000032019324000069/aapl-20240330.htm", q.Get("url"))
				assert.Equal(t, ItemRiskFactorsQuarterly, q.Get("item"))
				assert.Equal(t, FormatText, q.Get("type"))
				assert.Equal(t, "test-api-key", q.Get("token"))

				w.WriteHeader(http.StatusOK)
				w.Write([]byte("Item 1A. Risk Factors\nOur business is subject to risks."))
			},
			wantText: "Item 1A. Risk Factors\nOur business is subject to risks.",
		},
		{
			name: "auth error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid token"}`))
			},
			wantErr:    true,
			wantAPIErr: true,
			wantStatus: 401,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limited"}`))
			},
			wantErr:    true,
			wantAPIErr: true,
			wantStatus: 429,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newTestServer(t, tt.handler)
			text, err := c.GetSection(
				context.Background(),
				"https://www.sec.gov/Archives/edgar/data/320193/000032019324000069/aapl-20240330.htm",
				ItemRiskFactorsQuarterly,
				FormatText,
			)

			if tt.wantErr {
				require.Error(t, err)
				if tt.wantAPIErr {
					var apiErr *APIError
					require.ErrorAs(t, err, &apiErr)
					assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestContextCancellation(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should have been cancelled")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetSection(ctx, "https://example.com/doc.htm", ItemRiskFactorsQuarterly, FormatText)
	require.Error(t, err)
}

func TestIsAuthError(t *testing.T) {
	t.Parallel()
	assert.True(t, IsAuthError(&APIError{StatusCode: 401}))
	assert.True(t, IsAuthError(&APIError{StatusCode: 403}))
	assert.False(t, IsAuthError(&APIError{StatusCode: 429}))
	assert.False(t, IsAuthError(context.Canceled))
}

func TestAPIError_Error(t *testing.T) {
	t.Parallel()
	e := &APIError{StatusCode: 429, Body: `{"error":"rate limited"}`}
	assert.Equal(t, `extractor: HTTP 429: {"error":"rate limited"}`, e.Error())
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()
	customClient := &http.Client{}
	c := NewClient("key", WithHTTPClient(customClient))
	hc := c.(*httpClient)
	assert.Equal(t, customClient, hc.http)
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	got := truncate(string(long), 200)
	assert.Len(t, got, 203)
	assert.Equal(t, "...", got[200:])
	assert.Equal(t, "short", truncate("short", 200))
}
