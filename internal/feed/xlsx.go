package feed

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions configures the XLSX feed reader.
type XLSXOptions struct {
	SheetIndex int       // default 0
	SheetName  string    // if set, overrides SheetIndex
	SkipRows   int       // header rows to skip
	Columns    ColumnMap // which cells hold sku and title
}

// ReadXLSX reads a supplier XLSX feed and returns the mapped records.
// Rows with an empty title cell are dropped.
func ReadXLSX(path string, opts XLSXOptions) ([]Record, error) {
	if opts.Columns == (ColumnMap{}) {
		opts.Columns = DefaultColumnMap()
	}

	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "feed: xlsx open")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	var records []Record
	for i, row := range sheet.Rows {
		if i < opts.SkipRows {
			continue
		}

		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}

		if rec, ok := mapRow(i+1, cells, opts.Columns); ok {
			records = append(records, rec)
		}
	}

	return records, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("feed: xlsx sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("feed: xlsx sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}
