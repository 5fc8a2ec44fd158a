package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/busfactor-cli/internal/tabular"
)

func TestCountQuarters(t *testing.T) {
	t.Parallel()
	tbl := &tabular.Table{
		Header: []string{"cik", "quarter"},
		Rows: [][]string{
			{"1", "Q1"},
			{"2", ""},
			{"3", "  "},
			{"4", "Q3"},
		},
	}
	tbl.AppendStatsRow("quarter", 2, 2)

	c, err := CountQuarters(tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Filled)
	assert.Equal(t, 2, c.Empty)
}

func TestCountQuarters_MissingColumn(t *testing.T) {
	t.Parallel()
	tbl := &tabular.Table{Header: []string{"cik"}}
	_, err := CountQuarters(tbl)
	assert.Error(t, err)
}

func TestFilterEmptyQuarter(t *testing.T) {
	t.Parallel()
	tbl := &tabular.Table{
		Header: []string{"cik", "quarter"},
		Rows: [][]string{
			{"1", "Q1"},
			{"2", ""},
			{"3", "  "},
		},
	}
	tbl.AppendStatsRow("quarter", 1, 2)

	out, c, err := FilterEmptyQuarter(tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Empty)
	assert.Equal(t, 1, c.Filled)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "2", out.Get(0, 0))
	assert.Equal(t, "3", out.Get(1, 0))

	out.Set(0, 0, "mutated")
	assert.Equal(t, "2", tbl.Get(1, 0)) // result rows are copies
}

func TestFilterEmptyQuarter_MissingColumn(t *testing.T) {
	t.Parallel()
	tbl := &tabular.Table{Header: []string{"cik"}}
	_, _, err := FilterEmptyQuarter(tbl)
	assert.Error(t, err)
}

func compareTable(rows ...[]string) *tabular.Table {
	return &tabular.Table{
		Header: []string{"filedAt", "quarter", "ticker"},
		Rows:   rows,
	}
}

func TestCompareQuarters_Identical(t *testing.T) {
	t.Parallel()
	a := compareTable(
		[]string{"2024-05-02T16:30:00Z", "Q2", "AAPL"},
		[]string{"2024-08-01T09:00:00Z", "Q3", "AAPL"},
	)
	b := compareTable(
		[]string{"2024-05-02T16:30:00Z", "Q2", "AAPL"},
		[]string{"2024-08-01T09:00:00Z", "Q3", "AAPL"},
	)

	r, err := CompareQuarters(a, b)
	require.NoError(t, err)
	assert.True(t, r.Pass())
	assert.Equal(t, 2, r.Both)
	assert.Equal(t, 2, r.Equal)
	assert.Empty(t, r.Diffs)
	assert.Empty(t, r.OnlyA)
	assert.Empty(t, r.OnlyB)
}

func TestCompareQuarters_Disagreement(t *testing.T) {
	t.Parallel()
	a := compareTable([]string{"2024-05-02T16:30:00Z", "Q2", "AAPL"})
	b := compareTable([]string{"2024-05-02T16:30:00Z", "Q1", "MSFT"})

	r, err := CompareQuarters(a, b)
	require.NoError(t, err)
	assert.False(t, r.Pass())
	require.Len(t, r.Diffs, 1)
	assert.Equal(t, []string{"Q2"}, r.Diffs[0].QuartersA)
	assert.Equal(t, []string{"Q1"}, r.Diffs[0].QuartersB)
	assert.Equal(t, []string{"AAPL", "MSFT"}, r.MismatchTickers())
}

func TestCompareQuarters_TimezonesNormalized(t *testing.T) {
	t.Parallel()
	a := compareTable([]string{"2024-05-02T16:30:00-04:00", "Q2", "AAPL"})
	b := compareTable([]string{"2024-05-02T20:30:00Z", "Q2", "AAPL"})

	r, err := CompareQuarters(a, b)
	require.NoError(t, err)
	assert.True(t, r.Pass())
	assert.Equal(t, 1, r.Equal)
}

func TestCompareQuarters_OnlyInOneFile(t *testing.T) {
	t.Parallel()
	a := compareTable(
		[]string{"2024-05-02T16:30:00Z", "Q2", "AAPL"},
		[]string{"2024-02-01T10:00:00Z", "Q1", "AAPL"},
	)
	b := compareTable([]string{"2024-05-02T16:30:00Z", "Q2", "AAPL"})

	r, err := CompareQuarters(a, b)
	require.NoError(t, err)
	assert.True(t, r.Pass(), "missing timestamps are reported but do not fail the check")
	assert.Equal(t, []string{"2024-02-01 10:00:00Z"}, r.OnlyA)
	assert.Empty(t, r.OnlyB)
}

func TestCompareQuarters_InternalInconsistency(t *testing.T) {
	t.Parallel()
	a := compareTable(
		[]string{"2024-05-02T16:30:00Z", "Q2", "AAPL"},
		[]string{"2024-05-02T16:30:00Z", "Q3", "AAPL"},
	)
	b := compareTable(
		[]string{"2024-05-02T16:30:00Z", "Q2", "AAPL"},
	)

	r, err := CompareQuarters(a, b)
	require.NoError(t, err)
	assert.False(t, r.Pass())
	require.Len(t, r.InconsistentA, 1)
	assert.Equal(t, []string{"Q2", "Q3"}, r.InconsistentA[0].Quarters)
	assert.Empty(t, r.InconsistentB)
}

func TestCompareQuarters_UnparseableFiledAtSkipped(t *testing.T) {
	t.Parallel()
	a := compareTable(
		[]string{"not-a-date", "Q2", "AAPL"},
		[]string{"2024-05-02T16:30:00Z", "Q2", "AAPL"},
	)
	b := compareTable([]string{"2024-05-02T16:30:00Z", "Q2", "AAPL"})

	r, err := CompareQuarters(a, b)
	require.NoError(t, err)
	assert.Equal(t, 1, r.SkippedA)
	assert.Equal(t, 1, r.Both)
}
