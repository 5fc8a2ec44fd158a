package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/busfactor-cli/internal/tabular"
)

func orderTable(rows ...[]string) *tabular.Table {
	return &tabular.Table{
		Header: []string{"ticker", "cik"},
		Rows:   rows,
	}
}

func TestSortByCompany(t *testing.T) {
	tbl := orderTable(
		[]string{"msft", "789"},
		[]string{"AAPL", "320193"},
		[]string{"", "111"},
		[]string{"Amzn", "1018724"},
	)

	out := SortByCompany(tbl, false)
	require.Len(t, out.Rows, 4)
	assert.Equal(t, "AAPL", out.Get(0, 0))
	assert.Equal(t, "Amzn", out.Get(1, 0)) // case-insensitive ordering
	assert.Equal(t, "msft", out.Get(2, 0))
	assert.Equal(t, "", out.Get(3, 0)) // keyless rows last
}

func TestSortByCompany_DropUnkeyed(t *testing.T) {
	tbl := orderTable(
		[]string{"msft", "789"},
		[]string{"  ", "111"},
		[]string{"AAPL", "320193"},
	)

	out := SortByCompany(tbl, true)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "AAPL", out.Get(0, 0))
	assert.Equal(t, "msft", out.Get(1, 0))
}

func TestSortByCompany_NoSortColumn(t *testing.T) {
	tbl := &tabular.Table{
		Header: []string{"cik", "fyear"},
		Rows:   [][]string{{"2", "2024"}, {"1", "2023"}},
	}

	out := SortByCompany(tbl, true)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "2", out.Get(0, 0)) // order untouched
}

func TestSortByCompany_StableWithinCompany(t *testing.T) {
	tbl := orderTable(
		[]string{"AAPL", "second"},
		[]string{"AAPL", "first"},
	)

	out := SortByCompany(tbl, false)
	assert.Equal(t, "second", out.Get(0, 1))
	assert.Equal(t, "first", out.Get(1, 1))
}
