// Package pipeline wires the quarter-inference stages into the cascading
// run over a filings table, writing one audited CSV per stage.
package pipeline

import (
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/busfactor-cli/internal/edgar"
	"github.com/sells-group/busfactor-cli/internal/model"
	"github.com/sells-group/busfactor-cli/internal/tabular"
)

// Input and derived column names. Underscored columns are the working
// fields each stage fills; they ride along in the step CSVs so partial
// runs can be audited.
const (
	colCIK     = "cik"
	colFYear   = "fyear"
	colTicker  = "ticker"
	colFiledAt = "filedAt"

	colQuarter       = "quarter"
	colQuarterSource = "quarter_source"
	colAccession     = "_adsh_nodash"
	colPeriodSub     = "_period_end_date_sub"
	colFYEMonthAPI   = "_fye_month_api"
	colFYEDateAPI    = "_fye_date_api"
	colPeriodDoc     = "_period_end_date_html"
	colFYEMonthDoc   = "_fye_month_html"
	colPeriodEnd     = "_period_end_date"
	colFYEMonth      = "_fye_month"

	colPeriodOut = "periodOfReport"
	colFYEOut    = "fye"
)

const dateLayout = "2006-01-02"

// ParseFilings builds one Filing per table row. The URL column is
// required; all other inputs are optional and default to empty.
func ParseFilings(t *tabular.Table) ([]*model.Filing, error) {
	urlCol := t.DetectURLColumn()
	if urlCol < 0 {
		return nil, eris.New("pipeline: could not detect filing URL column")
	}
	get := func(row int, name string) string {
		if c := t.Col(name); c >= 0 {
			return t.Get(row, c)
		}
		return ""
	}
	sortCol := t.DetectSortColumn()

	filings := make([]*model.Filing, 0, len(t.Rows))
	for i := range t.Rows {
		url := t.Get(i, urlCol)
		f := &model.Filing{
			Row:       i,
			CIK:       get(i, colCIK),
			FYear:     get(i, colFYear),
			Ticker:    get(i, colTicker),
			FiledAt:   get(i, colFiledAt),
			URL:       url,
			Accession: edgar.AccessionFromURL(url),
		}
		if sortCol >= 0 {
			f.SortKey = t.Get(i, sortCol)
		}
		filings = append(filings, f)
	}
	return filings, nil
}

func formatDate(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(dateLayout)
}

func formatMonth(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return strconv.Itoa(m)
}

// syncDerived mirrors each filing's stage outputs into the working table
// so every step CSV carries the state the stage left behind.
func syncDerived(t *tabular.Table, filings []*model.Filing) {
	cols := []string{
		colQuarter, colQuarterSource, colAccession,
		colPeriodSub, colFYEMonthAPI, colFYEDateAPI,
		colPeriodDoc, colFYEMonthDoc,
	}
	for _, name := range cols {
		t.EnsureCol(name)
	}
	for _, f := range filings {
		t.Set(f.Row, t.Col(colQuarter), string(f.Quarter))
		t.Set(f.Row, t.Col(colQuarterSource), f.QuarterStage)
		t.Set(f.Row, t.Col(colAccession), f.Accession)
		t.Set(f.Row, t.Col(colPeriodSub), formatDate(f.PeriodEndSub))
		t.Set(f.Row, t.Col(colFYEMonthAPI), formatMonth(f.FYEMonthAPI))
		t.Set(f.Row, t.Col(colFYEDateAPI), formatDate(f.FYEDateAPI))
		t.Set(f.Row, t.Col(colPeriodDoc), formatDate(f.PeriodEndDoc))
		t.Set(f.Row, t.Col(colFYEMonthDoc), formatMonth(f.FYEMonthDoc))
	}
}

// syncComputed adds the compute stage's resolved columns: the merged
// period end and the chosen FYE month.
func syncComputed(t *tabular.Table, filings []*model.Filing, chosenMonth []int) {
	t.EnsureCol(colPeriodEnd)
	t.EnsureCol(colFYEMonth)
	for i, f := range filings {
		t.Set(f.Row, t.Col(colPeriodEnd), formatDate(f.PeriodEnd()))
		t.Set(f.Row, t.Col(colFYEMonth), formatMonth(chosenMonth[i]))
	}
}

func countEmptyQuarter(filings []*model.Filing) int {
	n := 0
	for _, f := range filings {
		if f.Quarter == "" {
			n++
		}
	}
	return n
}

func countFilledQuarter(filings []*model.Filing) int {
	return len(filings) - countEmptyQuarter(filings)
}
