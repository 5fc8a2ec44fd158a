package enrich

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sells-group/busfactor-cli/internal/tabular"
)

// SortByCompany orders the table by its company/ticker column using
// case-insensitive collation. Rows without a sort key go last, or are
// dropped when dropUnkeyed is set. Tables without a recognizable sort
// column are returned unchanged.
func SortByCompany(t *tabular.Table, dropUnkeyed bool) *tabular.Table {
	sortCol := t.DetectSortColumn()
	if sortCol < 0 {
		return t
	}

	if dropUnkeyed {
		kept := t.Rows[:0]
		for i := range t.Rows {
			if strings.TrimSpace(t.Get(i, sortCol)) != "" {
				kept = append(kept, t.Rows[i])
			}
		}
		t.Rows = kept
	}

	coll := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(t.Rows, func(a, b int) bool {
		ka := strings.TrimSpace(t.Get(a, sortCol))
		kb := strings.TrimSpace(t.Get(b, sortCol))
		if (ka == "") != (kb == "") {
			return kb == ""
		}
		return coll.CompareString(ka, kb) < 0
	})
	return t
}
