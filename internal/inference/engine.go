package inference

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/busfactor-cli/internal/edgar"
	"github.com/sells-group/busfactor-cli/internal/model"
)

// Stage identifies which detector resolved a fact, for the per-stage audit
// counters and the quarter_source output column.
type Stage string

const (
	StageSubmission Stage = "submission"
	StageDEI        Stage = "dei"
	StageAPI        Stage = "fye_api"
	StageBalance    Stage = "balance_sheet"
	StageMonthOnly  Stage = "month_only"
	StagePhrase     Stage = "fy_phrase"
)

// StageCounts tallies how many rows each stage resolved. One instance is
// threaded through each worker and merged after the batch drains.
type StageCounts map[Stage]int

// Add increments the counter for a stage.
func (s StageCounts) Add(stage Stage) {
	s[stage]++
}

// Merge folds other into s.
func (s StageCounts) Merge(other StageCounts) {
	for k, v := range other {
		s[k] += v
	}
}

// EarlyMonthCutoff is the day-of-month boundary for the 52/53-week
// correction: a period nominally ending on day 1-10 of month M is treated
// as ending in month M-1.
const EarlyMonthCutoff = 10

// EffectivePeriodMonth applies the early-month correction and returns the
// month the period effectively ends in, or 0 for a zero date.
func EffectivePeriodMonth(periodEnd time.Time) int {
	if periodEnd.IsZero() {
		return 0
	}
	if periodEnd.Day() <= EarlyMonthCutoff {
		return int(periodEnd.AddDate(0, 0, -EarlyMonthCutoff).Month())
	}
	return int(periodEnd.Month())
}

// QuarterFromMonths computes the fiscal quarter from the effective period
// month and the FYE month. A computation implying quarter 4 means the
// filing covers the fiscal year end and stays unresolved.
func QuarterFromMonths(periodMonth, fyeMonth int) (model.Quarter, bool) {
	if periodMonth == 0 || fyeMonth == 0 {
		return "", false
	}
	q := ((periodMonth-fyeMonth-1)%12+12)%12/3 + 1
	switch q {
	case 1:
		return model.Q1, true
	case 2:
		return model.Q2, true
	case 3:
		return model.Q3, true
	}
	return "", false
}

// ChooseFYEMonth picks between the document-derived and API-derived FYE
// months. The document wins unless its month equals the period-end month
// itself, a sign the detector caught the current period date rather than
// the fiscal year end.
func ChooseFYEMonth(periodMonth, docMonth, apiMonth int) int {
	if docMonth != 0 {
		if periodMonth != 0 && docMonth == periodMonth {
			return apiMonth
		}
		return docMonth
	}
	return apiMonth
}

// fyeDetector is one pure text detector in the waterfall: document text and
// the known period month in, an FYE month out.
type fyeDetector struct {
	stage Stage
	probe func(text string, periodMonth int) (int, bool)
}

// fyeDetectors is the fixed waterfall order. The first success
// short-circuits the rest.
var fyeDetectors = []fyeDetector{
	{StageBalance, ProbeFYEFromBalanceAsOf},
	{StageBalance, func(text string, pm int) (int, bool) {
		return ProbeFYEFromBalanceWindow(text, pm, 500, 1500)
	}},
	{StageMonthOnly, func(text string, pm int) (int, bool) {
		return ProbeFYEMonthOnly(text, pm, 500, 2500)
	}},
	{StagePhrase, ProbeFYEFromText},
}

// ProbeFYE runs the text detector waterfall, returning the month and the
// stage that produced it.
func ProbeFYE(text string, periodMonth int) (int, Stage, bool) {
	for _, d := range fyeDetectors {
		if mm, ok := d.probe(text, periodMonth); ok {
			return mm, d.stage, true
		}
	}
	return 0, "", false
}

// TextFetcher fetches a document as text. Satisfied by fetcher.HTTPFetcher.
type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, int, error)
}

// Engine drives document probing for one filing: fetch once, then run the
// detector waterfall over the raw source and its normalized text. All
// detectors are pure; the only suspension point is the fetch.
type Engine struct {
	fetcher TextFetcher
}

// NewEngine creates an inference engine over the given fetcher.
func NewEngine(f TextFetcher) *Engine {
	return &Engine{fetcher: f}
}

// Resolve probes the filing's document and annotates the filing in place
// with any period-end date, FYE month, and directly-declared quarter it can
// recover. Fetch failures are absorbed: the filing simply stays
// unannotated for the compute step to skip.
func (e *Engine) Resolve(ctx context.Context, f *model.Filing, counts StageCounts) {
	url := edgar.CanonicalURL(f.URL)
	if url == "" {
		return
	}

	doc, status, err := e.fetcher.FetchText(ctx, url)
	if err != nil {
		zap.L().Debug("inference: document fetch failed",
			zap.String("url", url),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	var text string
	if doc != "" {
		dei := ExtractDEI(doc)
		if !dei.PeriodEnd.IsZero() {
			f.PeriodEndDoc = dei.PeriodEnd
		}
		if dei.FYEMonth != 0 {
			f.FYEMonthDoc = dei.FYEMonth
			f.FYEStage = string(StageDEI)
		}
		if f.Quarter == "" {
			// Only Q1-Q3 resolve directly; FY filings fall through so the
			// fiscal year end is never miscounted as a quarter.
			if q := model.Quarter(dei.PeriodFocus); q.Valid() {
				f.Quarter = q
				f.QuarterStage = string(StageDEI)
				counts.Add(StageDEI)
			}
		}
		text = HTMLToText(doc)
	}

	if f.PeriodEndDoc.IsZero() {
		if dt, ok := ProbePeriod(text); ok {
			f.PeriodEndDoc = dt
		} else if dt, ok := e.probePeriodFromTxt(ctx, url); ok {
			f.PeriodEndDoc = dt
		}
	}

	if f.FYEMonthDoc == 0 && text != "" {
		periodMonth := 0
		if pe := f.PeriodEnd(); !pe.IsZero() {
			periodMonth = int(pe.Month())
		}
		if mm, stage, ok := ProbeFYE(text, periodMonth); ok {
			f.FYEMonthDoc = mm
			f.FYEStage = string(stage)
		}
	}
}

// probePeriodFromTxt falls back to the filing's plain-text rendering, whose
// SGML header carries the period of report.
func (e *Engine) probePeriodFromTxt(ctx context.Context, url string) (time.Time, bool) {
	for _, txtURL := range edgar.TxtCandidates(url) {
		txt, _, err := e.fetcher.FetchText(ctx, txtURL)
		if err != nil || txt == "" {
			continue
		}
		if dt, ok := ParsePeriodHeader(txt); ok {
			return dt, true
		}
	}
	return time.Time{}, false
}
