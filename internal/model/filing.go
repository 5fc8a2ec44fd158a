// Package model defines the core records flowing through the enrichment pipelines.
package model

import "time"

// Quarter is a resolved fiscal quarter. The empty value means unresolved;
// fiscal-year-end filings are deliberately left unresolved rather than
// forced to Q4.
type Quarter string

// Resolvable quarter values. Q4 is never emitted.
const (
	Q1 Quarter = "Q1"
	Q2 Quarter = "Q2"
	Q3 Quarter = "Q3"
)

// Valid reports whether q is one of the three resolvable quarters.
func (q Quarter) Valid() bool {
	return q == Q1 || q == Q2 || q == Q3
}

// Filing is one input row plus the derived fields each pipeline stage fills
// in. A Filing is created from one table row, annotated in place, and never
// deleted.
type Filing struct {
	Row int // index into the source table

	CIK       string
	FYear     string
	Ticker    string
	URL       string
	FiledAt   string
	SortKey   string // value of the company-name/ticker sort column, if any
	Accession string // no-dash accession parsed from URL

	// Quarter inference outputs.
	Quarter      Quarter
	QuarterStage string // detector stage that resolved the quarter
	FYEStage     string // detector stage that supplied the FYE month
	PeriodEndSub time.Time
	PeriodEndDoc time.Time
	FYEMonthAPI  int
	FYEMonthDoc  int
	FYEDateAPI   time.Time

	// Item enrichment outputs.
	SectionText string
	TotalWords  int
	Keywords    map[string]int
}

// PeriodEnd returns the period-end date, preferring the submission-table
// date over the document-derived one.
func (f *Filing) PeriodEnd() time.Time {
	if !f.PeriodEndSub.IsZero() {
		return f.PeriodEndSub
	}
	return f.PeriodEndDoc
}

// EnrichedRecord pairs a filing with its dedup-selection outcome.
type EnrichedRecord struct {
	Filing   *Filing
	Selected bool
}
