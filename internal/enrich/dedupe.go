package enrich

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/busfactor-cli/internal/tabular"
)

// DefaultGroupCols identify one fiscal quarter of one company.
var DefaultGroupCols = []string{"cik", "fyear", "quarter"}

// FiledAtColumn orders duplicate filings within a group.
const FiledAtColumn = "filedAt"

var filedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseFiledAt is forgiving: unparseable values sort first, so any row
// with a real timestamp beats one without.
func parseFiledAt(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range filedAtLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// Deduplicate keeps one filing per group. Within a group, rows whose
// section produced words are preferred; among those the latest filedAt
// wins. When every row in a group has zero words, the latest filedAt
// wins outright. The result is sorted by the group columns then
// filedAt, ascending.
func Deduplicate(t *tabular.Table, groupCols []string) (*tabular.Table, error) {
	if len(groupCols) == 0 {
		groupCols = DefaultGroupCols
	}

	var missing []string
	colIdx := make([]int, 0, len(groupCols))
	for _, name := range groupCols {
		idx := t.Col(name)
		if idx < 0 {
			missing = append(missing, name)
			continue
		}
		colIdx = append(colIdx, idx)
	}
	if len(missing) > 0 {
		return nil, eris.Errorf("dedupe: missing required grouping columns: %s", strings.Join(missing, ", "))
	}
	filedCol := t.Col(FiledAtColumn)
	if filedCol < 0 {
		return nil, eris.Errorf("dedupe: column %q is required", FiledAtColumn)
	}
	wordsCol := t.Col(WordsColumn)

	groups := make(map[string][]member)
	for i := range t.Rows {
		parts := make([]string, len(colIdx))
		for j, c := range colIdx {
			parts[j] = t.Get(i, c)
		}
		key := strings.Join(parts, "\x1f")
		words := 0
		if wordsCol >= 0 {
			words, _ = strconv.Atoi(strings.TrimSpace(t.Get(i, wordsCol)))
		}
		groups[key] = append(groups[key], member{
			row:     i,
			filedAt: parseFiledAt(t.Get(i, filedCol)),
			words:   words,
		})
	}

	keep := make([]int, 0, len(groups))
	for _, members := range groups {
		keep = append(keep, selectFromGroup(members))
	}
	sort.Ints(keep)

	out := &tabular.Table{Header: append([]string(nil), t.Header...)}
	for _, row := range keep {
		out.Rows = append(out.Rows, append([]string(nil), t.Rows[row]...))
	}

	sortCols := append(append([]string(nil), groupCols...), FiledAtColumn)
	SortTable(out, sortCols)
	return out, nil
}

type member struct {
	row     int
	filedAt time.Time
	words   int
}

// selectFromGroup picks the surviving row index; earlier rows win ties.
func selectFromGroup(members []member) int {
	best := latestFiled(members, true)
	if best >= 0 {
		return best
	}
	return latestFiled(members, false)
}

func latestFiled(members []member, requireWords bool) int {
	best := -1
	var bestAt time.Time
	for _, m := range members {
		if requireWords && m.words <= 0 {
			continue
		}
		if best < 0 || m.filedAt.After(bestAt) {
			best = m.row
			bestAt = m.filedAt
		}
	}
	return best
}

// SortTable stably sorts rows by the named columns, ascending, with a
// numeric comparison when both values parse as numbers.
func SortTable(t *tabular.Table, cols []string) {
	idx := make([]int, 0, len(cols))
	for _, name := range cols {
		if c := t.Col(name); c >= 0 {
			idx = append(idx, c)
		}
	}
	sort.SliceStable(t.Rows, func(a, b int) bool {
		for _, c := range idx {
			va, vb := t.Rows[a][c], t.Rows[b][c]
			if cmp := compareCells(va, vb); cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
}

func compareCells(a, b string) int {
	if a == b {
		return 0
	}
	na, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	nb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
