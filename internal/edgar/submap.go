package edgar

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/busfactor-cli/internal/model"
	"github.com/sells-group/busfactor-cli/internal/tabular"
)

// fpToQuarter maps declared fiscal-period codes to quarters. Single-quarter
// and half-year codes resolve directly; FY and unknown codes defer to the
// text-based inference engine so annual filings are never miscounted as Q4.
var fpToQuarter = map[string]model.Quarter{
	"Q1": model.Q1,
	"Q2": model.Q2,
	"Q3": model.Q3,
	"H1": model.Q2,
	"M9": model.Q3,
}

// QuarterFromFP resolves a declared fiscal-period code, returning false for
// FY or unrecognized codes.
func QuarterFromFP(fp string) (model.Quarter, bool) {
	q, ok := fpToQuarter[fp]
	return q, ok
}

// SubmissionEntry is one reference-table row keyed by no-dash accession.
type SubmissionEntry struct {
	FP        string
	PeriodEnd time.Time
}

// SubmissionMap is the read-only accession reference table, loaded once and
// shared across all rows.
type SubmissionMap map[string]SubmissionEntry

// LoadSubmissionMap reads the sub_map CSV (columns adsh, fp, period with
// period formatted yyyymmdd). Duplicate accessions keep the first row.
func LoadSubmissionMap(ctx context.Context, path string) (SubmissionMap, error) {
	t, err := tabular.ReadFile(ctx, path)
	if err != nil {
		return nil, eris.Wrap(err, "edgar: load submission map")
	}

	adshCol := t.Col("adsh")
	fpCol := t.Col("fp")
	if adshCol < 0 || fpCol < 0 {
		return nil, eris.New("edgar: submission map must include 'adsh' and 'fp' columns")
	}
	periodCol := t.Col("period")

	m := make(SubmissionMap, len(t.Rows))
	for row := range t.Rows {
		adsh := t.Get(row, adshCol)
		if adsh == "" {
			continue
		}
		if _, seen := m[adsh]; seen {
			continue
		}
		entry := SubmissionEntry{FP: t.Get(row, fpCol)}
		if periodCol >= 0 {
			if dt, err := time.Parse("20060102", t.Get(row, periodCol)); err == nil {
				entry.PeriodEnd = dt
			}
		}
		m[adsh] = entry
	}
	return m, nil
}

// Lookup returns the entry for the filing's accession, or false on a lookup
// miss (non-fatal; the caller defers to text-based inference).
func (m SubmissionMap) Lookup(accession string) (SubmissionEntry, bool) {
	e, ok := m[accession]
	return e, ok
}
