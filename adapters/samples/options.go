// Package samples loads integer-coded sample tables from delimited text,
// spreadsheets and SQL queries.
package samples

import (
	"strconv"
	"strings"

	"bayesview/domain/core"
	"bayesview/domain/dataset"
)

// Options control parsing and the preprocessing applied before estimation
type Options struct {
	// Delimiter overrides the extension default (tab, or comma for .csv)
	Delimiter rune `json:"delimiter"`
	// MaxRows keeps only the first MaxRows data rows; 0 keeps all
	MaxRows int `json:"max_rows"`
	// Recode adds a per-column offset to every observed code
	Recode map[string]int `json:"recode"`
	// Sheet selects the spreadsheet tab; empty means the first sheet
	Sheet string `json:"sheet"`
}

// build turns a header and string rows into a table. Blank cells are missing.
// Short rows are padded with missing cells.
func build(header []string, rows [][]string, opts Options) (*dataset.Table, error) {
	if len(header) == 0 {
		return nil, core.NewInvalidInputError("sample data has no header row")
	}
	if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
		rows = rows[:opts.MaxRows]
	}

	columns := make([]*dataset.Column, len(header))
	for j, name := range header {
		columns[j] = &dataset.Column{
			Name:    strings.TrimSpace(name),
			Codes:   make([]int, len(rows)),
			Present: make([]bool, len(rows)),
		}
	}

	for r, row := range rows {
		if len(row) > len(header) {
			return nil, core.NewInvalidInputError("row %d has %d cells, header has %d", r+1, len(row), len(header))
		}
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			code, err := strconv.Atoi(cell)
			if err != nil {
				return nil, core.NewInvalidInputError("row %d column %q: %q is not an integer code", r+1, columns[j].Name, cell)
			}
			columns[j].Codes[r] = code
			columns[j].Present[r] = true
		}
	}

	for name, offset := range opts.Recode {
		col := findColumn(columns, name)
		if col == nil {
			return nil, core.NewMissingColumnError(name)
		}
		for r := range col.Codes {
			if col.Present[r] {
				col.Codes[r] += offset
			}
		}
	}

	return dataset.NewTable(columns)
}

func findColumn(columns []*dataset.Column, name string) *dataset.Column {
	for _, c := range columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}
