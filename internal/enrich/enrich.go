// Package enrich runs the Item 1A enrichment over a filings table:
// per-row section retrieval, keyword counting, word totals, and
// quarter-level deduplication.
package enrich

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/busfactor-cli/internal/section"
	"github.com/sells-group/busfactor-cli/internal/tabular"
)

// TextSource yields cleaned Item 1A text for a filing URL.
type TextSource interface {
	Text(ctx context.Context, filingURL string) (string, error)
}

// Options controls enrichment execution.
type Options struct {
	Rate       time.Duration // >0 forces sequential fetches with this pause between rows
	Workers    int           // pool size when Rate is zero; <=0 picks from CPU count
	KeepText   bool          // retain section text in a section_1a_text column
	Limit      int           // >0 caps the number of rows processed
	RowTimeout time.Duration // >0 bounds one row's fetch chain
}

// TextColumn holds the raw section when Options.KeepText is set.
const TextColumn = "section_1a_text"

// WordsColumn holds the section word count.
const WordsColumn = "total_words"

// AutoWorkers resolves the pool size: an explicit positive value wins,
// otherwise the CPU count clamped to [2, 8].
func AutoWorkers(n int) int {
	if n > 0 {
		return n
	}
	cpu := runtime.NumCPU()
	if cpu < 1 {
		cpu = 4
	}
	if cpu > 8 {
		cpu = 8
	}
	if cpu < 2 {
		cpu = 2
	}
	return cpu
}

// Enricher annotates a filings table with keyword metrics.
type Enricher struct {
	source TextSource
	opts   Options
}

// New creates an Enricher over the given text source.
func New(source TextSource, opts Options) *Enricher {
	return &Enricher{source: source, opts: opts}
}

type rowResult struct {
	counts map[string]int
	words  int
	text   string
}

// Run fills the keyword, word-count, and optional text columns of t in
// place. Rows whose section cannot be retrieved get zero metrics; a
// retrieval failure never aborts the run.
func (e *Enricher) Run(ctx context.Context, t *tabular.Table) error {
	urlCol := t.DetectURLColumn()
	if urlCol < 0 {
		return eris.New("enrich: could not detect filing URL column")
	}

	for _, name := range section.KeywordGroupNames {
		t.EnsureCol(name)
	}
	t.EnsureCol(WordsColumn)
	if e.opts.KeepText {
		t.EnsureCol(TextColumn)
	}

	n := len(t.Rows)
	if e.opts.Limit > 0 && e.opts.Limit < n {
		n = e.opts.Limit
	}

	results := make([]rowResult, n)
	if e.opts.Rate > 0 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.processRow(ctx, t.Get(i, urlCol))
			if i < n-1 {
				sleepCtx(ctx, e.opts.Rate)
			}
		}
	} else {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(AutoWorkers(e.opts.Workers))
		for i := 0; i < n; i++ {
			g.Go(func() error {
				results[i] = e.processRow(gCtx, t.Get(i, urlCol))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}

	for i, r := range results {
		for name, v := range r.counts {
			t.Set(i, t.Col(name), strconv.Itoa(v))
		}
		t.Set(i, t.Col(WordsColumn), strconv.Itoa(r.words))
		if e.opts.KeepText {
			t.Set(i, t.Col(TextColumn), r.text)
		}
	}
	return ctx.Err()
}

func (e *Enricher) processRow(ctx context.Context, url string) rowResult {
	if e.opts.RowTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.RowTimeout)
		defer cancel()
	}

	var text string
	if url != "" {
		var err error
		text, err = e.source.Text(ctx, url)
		if err != nil {
			zap.L().Warn("enrich: section retrieval failed",
				zap.String("url", url),
				zap.Error(err),
			)
			text = ""
		}
	}
	res := rowResult{
		counts: section.CountKeywords(text),
		words:  section.CountWords(text),
	}
	if e.opts.KeepText {
		res.text = text
	}
	return res
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
