// Package tabular reads and writes the header-row CSV tables the pipelines
// consume and produce.
package tabular

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// Table is an in-memory tabular file: a header row plus data rows. Rows may
// be ragged; missing trailing cells read as empty strings.
type Table struct {
	Header []string
	Rows   [][]string
}

// Options configures the streaming CSV parser.
type Options struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
	TrimSpace  bool
}

// Stream reads CSV rows (header included) and sends them to a channel.
// Caller must consume the returned row channel. Errors are sent on the error
// channel. Malformed rows are skipped rather than aborting the stream. Both
// channels are closed when processing completes.
func Stream(ctx context.Context, r io.Reader, opts Options) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := csv.NewReader(r)
		if opts.Delimiter != 0 {
			reader.Comma = opts.Delimiter
		}
		if opts.Comment != 0 {
			reader.Comment = opts.Comment
		}
		reader.LazyQuotes = opts.LazyQuotes
		reader.FieldsPerRecord = -1 // allow variable fields

		for {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "tabular: context cancelled")
				return
			}

			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				if _, ok := err.(*csv.ParseError); ok {
					continue // tolerate bad lines, same as the upstream exports
				}
				errCh <- eris.Wrap(err, "tabular: read row")
				return
			}

			if opts.TrimSpace {
				for i, field := range record {
					record[i] = strings.TrimSpace(field)
				}
			}

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "tabular: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

// Read consumes a CSV stream into a Table. The first row is the header.
func Read(ctx context.Context, r io.Reader) (*Table, error) {
	rowCh, errCh := Stream(ctx, r, Options{LazyQuotes: true})

	t := &Table{}
	for row := range rowCh {
		if t.Header == nil {
			t.Header = row
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	if t.Header == nil {
		return nil, eris.New("tabular: empty file, no header row")
	}
	return t, nil
}

// ReadFile reads a CSV file into a Table.
func ReadFile(ctx context.Context, path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "tabular: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	t, err := Read(ctx, f)
	if err != nil {
		return nil, eris.Wrapf(err, "tabular: read %s", path)
	}
	return t, nil
}

// WriteFile writes the table as CSV, creating the parent directory if needed.
func (t *Table) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "tabular: create dir %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "tabular: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return eris.Wrap(err, "tabular: write header")
	}
	for _, row := range t.Rows {
		padded := row
		if len(row) < len(t.Header) {
			padded = make([]string, len(t.Header))
			copy(padded, row)
		}
		if err := w.Write(padded); err != nil {
			return eris.Wrap(err, "tabular: write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "tabular: flush")
	}
	return nil
}

// Col returns the index of the named column, or -1.
func (t *Table) Col(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// EnsureCol returns the index of the named column, appending it (with empty
// cells) when absent.
func (t *Table) EnsureCol(name string) int {
	if i := t.Col(name); i >= 0 {
		return i
	}
	t.Header = append(t.Header, name)
	return len(t.Header) - 1
}

// Get returns the cell at (row, col), tolerating ragged rows.
func (t *Table) Get(row, col int) string {
	if col < 0 || row < 0 || row >= len(t.Rows) || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Set writes the cell at (row, col), widening the row if needed.
func (t *Table) Set(row, col int, value string) {
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return
	}
	for len(t.Rows[row]) <= col {
		t.Rows[row] = append(t.Rows[row], "")
	}
	t.Rows[row][col] = value
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{Header: append([]string(nil), t.Header...)}
	c.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		c.Rows[i] = append([]string(nil), row...)
	}
	return c
}

// statsMarker labels the trailing audit row appended to step outputs.
const statsMarker = "__STATS__"

// AppendStatsRow appends the per-step audit row: first column carries the
// marker, the named column carries "FILLED=n; REMAIN=m".
func (t *Table) AppendStatsRow(col string, filled, remain int) {
	idx := t.EnsureCol(col)
	row := make([]string, len(t.Header))
	row[0] = statsMarker
	row[idx] = fmt.Sprintf("FILLED=%d; REMAIN=%d", filled, remain)
	t.Rows = append(t.Rows, row)
}

// IsStatsRow reports whether the row is a trailing audit row, so re-runs over
// a previous output skip it.
func (t *Table) IsStatsRow(row int) bool {
	return t.Get(row, 0) == statsMarker
}

var urlHintRe = regexp.MustCompile(`(?i)https?://|/Archives/edgar/`)

// urlColumnPreference lists column names checked first when locating the
// filing-document URL column.
var urlColumnPreference = []string{
	"filingUrl",
	"url",
	"link",
	"documentUrl",
	"docUrl",
	"primary_document",
	"primary_doc",
}

// DetectURLColumn locates the column holding filing document URLs: a
// preferred name whose values look like URLs, else the column with the most
// URL-looking values in the first thousand rows.
func (t *Table) DetectURLColumn() int {
	for _, name := range urlColumnPreference {
		idx := t.Col(name)
		if idx < 0 {
			continue
		}
		for row := range t.Rows {
			if urlHintRe.MatchString(t.Get(row, idx)) {
				return idx
			}
		}
	}

	sample := len(t.Rows)
	if sample > 1000 {
		sample = 1000
	}
	bestCol, bestHits := -1, 0
	for col := range t.Header {
		hits := 0
		for row := 0; row < sample; row++ {
			if urlHintRe.MatchString(t.Get(row, col)) {
				hits++
			}
		}
		if hits > bestHits {
			bestCol, bestHits = col, hits
		}
	}
	return bestCol
}

// sortColumnPreference mirrors the column order used when choosing the final
// output sort key.
var sortColumnPreference = []string{
	"company", "companyName", "conm", "name", "CompanyName", "issuer", "ticker",
}

// DetectSortColumn returns the column used for final output ordering, or -1.
func (t *Table) DetectSortColumn() int {
	for _, name := range sortColumnPreference {
		if idx := t.Col(name); idx >= 0 {
			return idx
		}
	}
	return -1
}
