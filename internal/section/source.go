package section

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/busfactor-cli/internal/edgar"
	"github.com/sells-group/busfactor-cli/pkg/extractor"
)

// Fetcher retrieves a document body over HTTP.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, int, error)
}

// Source produces cleaned Item 1A text for a filing URL. The Extractor
// API is tried first when a client is configured; on failure or when no
// client is set, the filing is fetched directly and the section located
// with local heuristics.
type Source struct {
	extractor extractor.Client // nil disables the API path
	fetcher   Fetcher
}

// NewSource creates a Source. ext may be nil when no API key is available.
func NewSource(ext extractor.Client, f Fetcher) *Source {
	return &Source{extractor: ext, fetcher: f}
}

func supportedSuffix(lowered string) (htmlDoc, ok bool) {
	switch {
	case strings.HasSuffix(lowered, ".htm"), strings.HasSuffix(lowered, ".html"):
		return true, true
	case strings.HasSuffix(lowered, ".txt"):
		return false, true
	}
	return false, false
}

// Text returns the cleaned Item 1A section for filingURL, or "" when
// the URL is not a fetchable document or the section cannot be found.
func (s *Source) Text(ctx context.Context, filingURL string) (string, error) {
	url := edgar.CanonicalURL(filingURL)
	lowered := strings.ToLower(strings.TrimSpace(url))
	htmlDoc, ok := supportedSuffix(lowered)
	if !ok {
		return "", nil
	}

	if s.extractor != nil {
		text, err := s.viaExtractor(ctx, url, htmlDoc)
		if err == nil && text != "" {
			return text, nil
		}
		if err != nil {
			zap.L().Debug("section: extractor api failed, falling back to direct fetch",
				zap.String("url", url),
				zap.Error(err),
			)
			var apiErr *extractor.APIError
			if eris.As(err, &apiErr) && apiErr.StatusCode == 429 {
				sleepCtx(ctx, 2*time.Second)
			}
		}
	}

	return s.viaFetch(ctx, url, htmlDoc)
}

func (s *Source) viaExtractor(ctx context.Context, url string, htmlDoc bool) (string, error) {
	format := extractor.FormatText
	if htmlDoc {
		format = extractor.FormatHTML
	}
	raw, err := s.extractor.GetSection(ctx, url, extractor.ItemRiskFactorsQuarterly, format)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", nil
	}
	if htmlDoc {
		raw, err = HTMLText(raw)
		if err != nil {
			return "", eris.Wrap(err, "section: parse extractor html")
		}
	}
	return CleanText(raw), nil
}

func (s *Source) viaFetch(ctx context.Context, url string, htmlDoc bool) (string, error) {
	body, status, err := s.fetcher.FetchText(ctx, url)
	if err != nil {
		return "", eris.Wrapf(err, "section: fetch %s (status %d)", url, status)
	}
	raw := body
	if htmlDoc {
		raw, err = HTMLText(body)
		if err != nil {
			return "", eris.Wrapf(err, "section: parse html %s", url)
		}
	}
	sectionText := ExtractItem1A(raw)
	return CleanText(sectionText), nil
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
