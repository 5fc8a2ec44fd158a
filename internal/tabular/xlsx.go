package tabular

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ReadXLSXFile reads the first sheet of a workbook into a Table. The first
// row is the header, matching the CSV reader's contract.
func ReadXLSXFile(path string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "tabular: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("tabular: %s has no sheets", path)
	}

	t := &Table{}
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if t.Header == nil {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	if t.Header == nil {
		return nil, eris.Errorf("tabular: %s has no header row", path)
	}
	return t, nil
}

// WriteXLSXFile writes the table as a single-sheet workbook. Used for the
// final enrichment output when --format xlsx is requested.
func (t *Table) WriteXLSXFile(path, sheetName string) error {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "tabular: create dir %s", dir)
		}
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "tabular: add sheet")
	}

	headerRow := sheet.AddRow()
	for _, h := range t.Header {
		headerRow.AddCell().SetString(h)
	}
	for _, row := range t.Rows {
		r := sheet.AddRow()
		for col := range t.Header {
			var v string
			if col < len(row) {
				v = row[col]
			}
			r.AddCell().SetString(v)
		}
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "tabular: save %s", path)
	}
	return nil
}
