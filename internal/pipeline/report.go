package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/busfactor-cli/internal/tabular"
)

// QuarterCounts is the fill summary of one output file.
type QuarterCounts struct {
	Empty  int
	Filled int
}

// CountQuarters tallies empty versus filled quarter cells. Trailing audit
// rows from step outputs are not counted.
func CountQuarters(t *tabular.Table) (QuarterCounts, error) {
	col := t.Col(colQuarter)
	if col < 0 {
		return QuarterCounts{}, eris.Errorf("pipeline: column %q not found", colQuarter)
	}
	var c QuarterCounts
	for i := range t.Rows {
		if t.IsStatsRow(i) {
			continue
		}
		if strings.TrimSpace(t.Get(i, col)) == "" {
			c.Empty++
		} else {
			c.Filled++
		}
	}
	return c, nil
}

// FilterEmptyQuarter keeps only the rows whose quarter cell is blank, for
// re-running the pipeline over its unresolved remainder. Trailing audit
// rows are dropped from the result.
func FilterEmptyQuarter(t *tabular.Table) (*tabular.Table, QuarterCounts, error) {
	col := t.Col(colQuarter)
	if col < 0 {
		return nil, QuarterCounts{}, eris.Errorf("pipeline: column %q not found", colQuarter)
	}

	out := &tabular.Table{Header: append([]string(nil), t.Header...)}
	var c QuarterCounts
	for i := range t.Rows {
		if t.IsStatsRow(i) {
			continue
		}
		if strings.TrimSpace(t.Get(i, col)) == "" {
			c.Empty++
			out.Rows = append(out.Rows, append([]string(nil), t.Rows[i]...))
		} else {
			c.Filled++
		}
	}
	return out, c, nil
}

// QuarterDiff is one filedAt timestamp whose quarter sets disagree
// between the two files.
type QuarterDiff struct {
	FiledAt   string
	QuartersA []string
	QuartersB []string
	TickersA  []string
	TickersB  []string
}

// Inconsistency is one filedAt timestamp mapped to more than one quarter
// within a single file.
type Inconsistency struct {
	FiledAt  string
	Quarters []string
}

// CompareReport summarizes quarter agreement between two outputs keyed
// by filedAt.
type CompareReport struct {
	InconsistentA []Inconsistency
	InconsistentB []Inconsistency
	Both          int
	Equal         int
	Diffs         []QuarterDiff
	OnlyA         []string
	OnlyB         []string
	SkippedA      int // rows with unparseable filedAt
	SkippedB      int
}

// Pass reports whether both files agree and neither is internally
// inconsistent.
func (r *CompareReport) Pass() bool {
	return len(r.Diffs) == 0 && len(r.InconsistentA) == 0 && len(r.InconsistentB) == 0
}

type fileGroups struct {
	quarters map[string]map[string]bool // filedAt -> quarter set
	tickers  map[string]map[string]bool
	skipped  int
}

func groupByFiledAt(t *tabular.Table) (*fileGroups, error) {
	filedCol := t.Col(colFiledAt)
	quarterCol := t.Col(colQuarter)
	if filedCol < 0 || quarterCol < 0 {
		return nil, eris.Errorf("pipeline: columns %q and %q are required", colFiledAt, colQuarter)
	}
	tickerCol := t.Col(colTicker)

	g := &fileGroups{
		quarters: make(map[string]map[string]bool),
		tickers:  make(map[string]map[string]bool),
	}
	for i := range t.Rows {
		if t.IsStatsRow(i) {
			continue
		}
		ts := parseFiledAtNorm(t.Get(i, filedCol))
		if ts == "" {
			g.skipped++
			continue
		}
		if g.quarters[ts] == nil {
			g.quarters[ts] = make(map[string]bool)
			g.tickers[ts] = make(map[string]bool)
		}
		g.quarters[ts][strings.TrimSpace(t.Get(i, quarterCol))] = true
		if tickerCol >= 0 {
			if tk := strings.TrimSpace(t.Get(i, tickerCol)); tk != "" {
				g.tickers[ts][tk] = true
			}
		}
	}
	return g, nil
}

var filedAtNormLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseFiledAtNorm(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range filedAtNormLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC().Format("2006-01-02 15:04:05Z")
		}
	}
	return ""
}

func setSlice(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func inconsistencies(g *fileGroups) []Inconsistency {
	var out []Inconsistency
	for ts, qs := range g.quarters {
		if len(qs) > 1 {
			out = append(out, Inconsistency{FiledAt: ts, Quarters: setSlice(qs)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiledAt < out[j].FiledAt })
	return out
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CompareQuarters checks two output files for quarter agreement per
// filedAt timestamp, the way two pipeline runs (or a run and a reference
// answer set) are validated against each other.
func CompareQuarters(a, b *tabular.Table) (*CompareReport, error) {
	ga, err := groupByFiledAt(a)
	if err != nil {
		return nil, err
	}
	gb, err := groupByFiledAt(b)
	if err != nil {
		return nil, err
	}

	report := &CompareReport{
		InconsistentA: inconsistencies(ga),
		InconsistentB: inconsistencies(gb),
		SkippedA:      ga.skipped,
		SkippedB:      gb.skipped,
	}

	for ts, qa := range ga.quarters {
		qb, ok := gb.quarters[ts]
		if !ok {
			report.OnlyA = append(report.OnlyA, ts)
			continue
		}
		report.Both++
		sa, sb := setSlice(qa), setSlice(qb)
		if equalSets(sa, sb) {
			report.Equal++
			continue
		}
		report.Diffs = append(report.Diffs, QuarterDiff{
			FiledAt:   ts,
			QuartersA: sa,
			QuartersB: sb,
			TickersA:  setSlice(ga.tickers[ts]),
			TickersB:  setSlice(gb.tickers[ts]),
		})
	}
	for ts := range gb.quarters {
		if _, ok := ga.quarters[ts]; !ok {
			report.OnlyB = append(report.OnlyB, ts)
		}
	}

	sort.Strings(report.OnlyA)
	sort.Strings(report.OnlyB)
	sort.Slice(report.Diffs, func(i, j int) bool { return report.Diffs[i].FiledAt < report.Diffs[j].FiledAt })
	return report, nil
}

// MismatchTickers collects the distinct tickers named by disagreeing rows.
func (r *CompareReport) MismatchTickers() []string {
	set := make(map[string]bool)
	for _, d := range r.Diffs {
		for _, tk := range d.TickersA {
			set[tk] = true
		}
		for _, tk := range d.TickersB {
			set[tk] = true
		}
	}
	return setSlice(set)
}
