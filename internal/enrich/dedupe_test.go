package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/busfactor-cli/internal/tabular"
)

func dedupeTable(rows ...[]string) *tabular.Table {
	return &tabular.Table{
		Header: []string{"cik", "fyear", "quarter", "filedAt", WordsColumn},
		Rows:   rows,
	}
}

func TestDeduplicate_PrefersRowsWithWords(t *testing.T) {
	t.Parallel()
	tbl := dedupeTable(
		[]string{"100", "2020", "Q1", "2020-05-10", "0"},
		[]string{"100", "2020", "Q1", "2020-05-12", "0"},
		[]string{"100", "2020", "Q1", "2020-05-01", "150"},
	)

	out, err := Deduplicate(tbl, nil)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "150", out.Get(0, out.Col(WordsColumn)), "nonzero words must beat a later zero-word filing")
	assert.Equal(t, "2020-05-01", out.Get(0, out.Col("filedAt")))
}

func TestDeduplicate_AllZeroWordsKeepsLatest(t *testing.T) {
	t.Parallel()
	tbl := dedupeTable(
		[]string{"100", "2020", "Q1", "2020-05-10", "0"},
		[]string{"100", "2020", "Q1", "2020-05-12", "0"},
	)

	out, err := Deduplicate(tbl, nil)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "2020-05-12", out.Get(0, out.Col("filedAt")))
}

func TestDeduplicate_LatestAmongNonzero(t *testing.T) {
	t.Parallel()
	tbl := dedupeTable(
		[]string{"100", "2020", "Q1", "2020-05-10", "90"},
		[]string{"100", "2020", "Q1", "2020-05-12", "40"},
	)

	out, err := Deduplicate(tbl, nil)
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "40", out.Get(0, out.Col(WordsColumn)))
}

func TestDeduplicate_GroupsAreIndependent(t *testing.T) {
	t.Parallel()
	tbl := dedupeTable(
		[]string{"100", "2020", "Q1", "2020-05-10", "10"},
		[]string{"100", "2020", "Q2", "2020-08-10", "20"},
		[]string{"200", "2020", "Q1", "2020-05-11", "30"},
	)

	out, err := Deduplicate(tbl, nil)
	require.NoError(t, err)
	assert.Len(t, out.Rows, 3)
}

func TestDeduplicate_SortedByGroupColsThenFiledAt(t *testing.T) {
	t.Parallel()
	tbl := dedupeTable(
		[]string{"200", "2020", "Q1", "2020-05-11", "30"},
		[]string{"100", "2021", "Q1", "2021-05-10", "10"},
		[]string{"100", "2020", "Q1", "2020-05-10", "10"},
	)

	out, err := Deduplicate(tbl, nil)
	require.NoError(t, err)
	require.Len(t, out.Rows, 3)
	assert.Equal(t, "100", out.Get(0, out.Col("cik")))
	assert.Equal(t, "2020", out.Get(0, out.Col("fyear")))
	assert.Equal(t, "2021", out.Get(1, out.Col("fyear")))
	assert.Equal(t, "200", out.Get(2, out.Col("cik")))
}

func TestDeduplicate_NumericSortNotLexicographic(t *testing.T) {
	t.Parallel()
	tbl := dedupeTable(
		[]string{"1000", "2020", "Q1", "2020-05-11", "30"},
		[]string{"200", "2020", "Q1", "2020-05-10", "10"},
	)

	out, err := Deduplicate(tbl, nil)
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "200", out.Get(0, out.Col("cik")))
}

func TestDeduplicate_Idempotent(t *testing.T) {
	t.Parallel()
	tbl := dedupeTable(
		[]string{"100", "2020", "Q1", "2020-05-10", "0"},
		[]string{"100", "2020", "Q1", "2020-05-12", "0"},
		[]string{"100", "2020", "Q1", "2020-05-01", "150"},
	)

	once, err := Deduplicate(tbl, nil)
	require.NoError(t, err)
	twice, err := Deduplicate(once, nil)
	require.NoError(t, err)
	assert.Equal(t, once.Rows, twice.Rows)
}

func TestDeduplicate_MissingColumns(t *testing.T) {
	t.Parallel()
	tbl := &tabular.Table{Header: []string{"cik", "filedAt"}, Rows: [][]string{{"1", "2020-01-01"}}}
	_, err := Deduplicate(tbl, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fyear")

	tbl2 := &tabular.Table{Header: []string{"cik", "fyear", "quarter"}, Rows: [][]string{{"1", "2020", "Q1"}}}
	_, err = Deduplicate(tbl2, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filedAt")
}

func TestDeduplicate_CustomGroupCols(t *testing.T) {
	t.Parallel()
	tbl := &tabular.Table{
		Header: []string{"ticker", "fyear", "filedAt", WordsColumn},
		Rows: [][]string{
			{"AAPL", "2020", "2020-05-10", "5"},
			{"AAPL", "2020", "2020-08-10", "9"},
		},
	}

	out, err := Deduplicate(tbl, []string{"ticker", "fyear"})
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, "9", out.Get(0, out.Col(WordsColumn)))
}
