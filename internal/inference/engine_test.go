package inference

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/sells-group/busfactor-cli/internal/model"
)

func TestEffectivePeriodMonth(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{"zero date", time.Time{}, 0},
		{"mid-month", time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC), 3},
		{"day ten shifts back", time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), 6},
		{"day eleven stays", time.Date(2024, 7, 11, 0, 0, 0, 0, time.UTC), 7},
		{"early january wraps", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectivePeriodMonth(tt.date))
		})
	}
}

func TestQuarterFromMonths(t *testing.T) {
	tests := []struct {
		name        string
		periodMonth int
		fyeMonth    int
		want        model.Quarter
		ok          bool
	}{
		{"calendar q1", 3, 12, model.Q1, true},
		{"calendar q2", 6, 12, model.Q2, true},
		{"calendar q3", 9, 12, model.Q3, true},
		{"fiscal year end stays unresolved", 12, 12, "", false},
		{"june fye december period", 12, 6, model.Q2, true},
		{"september fye december period", 12, 9, model.Q1, true},
		{"missing period month", 0, 12, "", false},
		{"missing fye month", 3, 0, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := QuarterFromMonths(tt.periodMonth, tt.fyeMonth)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, q)
		})
	}
}

func TestChooseFYEMonth(t *testing.T) {
	assert.Equal(t, 6, ChooseFYEMonth(3, 6, 12), "document month wins")
	assert.Equal(t, 12, ChooseFYEMonth(3, 3, 12), "document month equal to period falls back to API")
	assert.Equal(t, 12, ChooseFYEMonth(3, 0, 12), "no document month")
	assert.Equal(t, 6, ChooseFYEMonth(0, 6, 12), "no period month keeps document")
	assert.Equal(t, 0, ChooseFYEMonth(3, 0, 0), "nothing known")
}

func TestStageCounts(t *testing.T) {
	a := StageCounts{}
	a.Add(StageDEI)
	a.Add(StageDEI)
	a.Add(StageBalance)

	b := StageCounts{StageBalance: 1, StagePhrase: 2}
	a.Merge(b)

	assert.Equal(t, StageCounts{StageDEI: 2, StageBalance: 2, StagePhrase: 2}, a)
}

// mapFetcher serves canned documents by URL.
type mapFetcher struct {
	docs  map[string]string
	calls []string
}

func (m *mapFetcher) FetchText(_ context.Context, url string) (string, int, error) {
	m.calls = append(m.calls, url)
	doc, ok := m.docs[url]
	if !ok {
		return "", 404, eris.New("not found")
	}
	return doc, 200, nil
}

func TestEngineResolve_DEI(t *testing.T) {
	url := "https://www.sec.gov/Archives/edgar/data/320193/000032019324000069/aapl.htm"
	doc := `<html><ix:nonNumeric name="dei:DocumentFiscalPeriodFocus" contextRef="c">Q2</ix:nonNumeric>
<ix:nonNumeric name="dei:CurrentFiscalYearEndDate" contextRef="c">--09-28</ix:nonNumeric>
<ix:nonNumeric name="dei:DocumentPeriodEndDate" contextRef="c">2024-03-30</ix:nonNumeric></html>`

	e := NewEngine(&mapFetcher{docs: map[string]string{url: doc}})
	f := &model.Filing{URL: url}
	counts := StageCounts{}
	e.Resolve(context.Background(), f, counts)

	assert.Equal(t, model.Q2, f.Quarter)
	assert.Equal(t, string(StageDEI), f.QuarterStage)
	assert.Equal(t, 9, f.FYEMonthDoc)
	assert.Equal(t, string(StageDEI), f.FYEStage)
	assert.Equal(t, time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC), f.PeriodEndDoc)
	assert.Equal(t, 1, counts[StageDEI])
}

func TestEngineResolve_FYFocusNotAQuarter(t *testing.T) {
	url := "https://www.sec.gov/Archives/edgar/data/1/000000000124000001/doc.htm"
	doc := `<ix:nonNumeric name="dei:DocumentFiscalPeriodFocus" contextRef="c">FY</ix:nonNumeric>
<ix:nonNumeric name="dei:DocumentPeriodEndDate" contextRef="c">2023-12-31</ix:nonNumeric>`

	e := NewEngine(&mapFetcher{docs: map[string]string{url: doc}})
	f := &model.Filing{URL: url}
	counts := StageCounts{}
	e.Resolve(context.Background(), f, counts)

	assert.Equal(t, model.Quarter(""), f.Quarter)
	assert.Empty(t, counts)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), f.PeriodEndDoc)
}

func TestEngineResolve_CoverDateAndBalanceProbe(t *testing.T) {
	url := "https://www.sec.gov/Archives/edgar/data/1/000000000124000001/doc.htm"
	doc := `<html><body><p>For the quarterly period ended March 30, 2024</p>
<p>CONSOLIDATED BALANCE SHEETS March 30, 2024 September 30, 2023</p>
<p>Total assets $1,000</p></body></html>`

	e := NewEngine(&mapFetcher{docs: map[string]string{url: doc}})
	f := &model.Filing{URL: url}
	e.Resolve(context.Background(), f, StageCounts{})

	assert.Equal(t, time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC), f.PeriodEndDoc)
	assert.Equal(t, 9, f.FYEMonthDoc)
	assert.Equal(t, string(StageBalance), f.FYEStage)
}

func TestEngineResolve_TxtHeaderFallback(t *testing.T) {
	url := "https://www.sec.gov/Archives/edgar/data/320193/000032019324000069/aapl.htm"
	txtURL := "https://www.sec.gov/Archives/edgar/data/320193/000032019324000069/0000320193-24-000069.txt"

	fetch := &mapFetcher{docs: map[string]string{
		url:    "<html><body>Quarterly report without a cover date.</body></html>",
		txtURL: "CONFORMED PERIOD OF REPORT:\t20240330\n",
	}}
	e := NewEngine(fetch)
	f := &model.Filing{URL: url}
	e.Resolve(context.Background(), f, StageCounts{})

	assert.Equal(t, time.Date(2024, 3, 30, 0, 0, 0, 0, time.UTC), f.PeriodEndDoc)
	assert.Contains(t, fetch.calls, txtURL)
}

func TestEngineResolve_FetchFailureLeavesFilingUntouched(t *testing.T) {
	e := NewEngine(&mapFetcher{docs: map[string]string{}})
	f := &model.Filing{URL: "https://example.com/missing.htm"}
	e.Resolve(context.Background(), f, StageCounts{})

	assert.Equal(t, model.Quarter(""), f.Quarter)
	assert.True(t, f.PeriodEndDoc.IsZero())
	assert.Zero(t, f.FYEMonthDoc)
}

func TestEngineResolve_BlankURLSkipsFetch(t *testing.T) {
	fetch := &mapFetcher{docs: map[string]string{}}
	e := NewEngine(fetch)
	e.Resolve(context.Background(), &model.Filing{URL: "  "}, StageCounts{})

	assert.Empty(t, fetch.calls)
}
