package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"bayesview/domain/cpd"

	"github.com/fatih/color"
)

var (
	header = color.New(color.FgCyan, color.Bold)
	label  = color.New(color.FgHiBlack)
)

// Grid writes an aligned table with row labels on the left. Values are
// printed with the given number of decimals; precision < 0 prints the
// shortest exact representation.
func Grid(w io.Writer, table *cpd.Table, precision int) error {
	cells := FormatCells(table, precision)

	rowWidth := 0
	for _, l := range table.RowLabels {
		rowWidth = max(rowWidth, len(l))
	}
	widths := make([]int, len(table.ColLabels))
	for j, l := range table.ColLabels {
		widths[j] = len(l)
		for i := range cells {
			widths[j] = max(widths[j], len(cells[i][j]))
		}
	}

	var line strings.Builder
	line.WriteString(strings.Repeat(" ", rowWidth))
	for j, l := range table.ColLabels {
		line.WriteString(fmt.Sprintf("  %*s", widths[j], l))
	}
	if _, err := header.Fprintln(w, line.String()); err != nil {
		return err
	}

	for i, rowLabel := range table.RowLabels {
		if _, err := label.Fprintf(w, "%-*s", rowWidth, rowLabel); err != nil {
			return err
		}
		line.Reset()
		for j := range table.ColLabels {
			line.WriteString(fmt.Sprintf("  %*s", widths[j], cells[i][j]))
		}
		if _, err := fmt.Fprintln(w, line.String()); err != nil {
			return err
		}
	}
	return nil
}

// FormatCells renders every probability with the given precision
func FormatCells(table *cpd.Table, precision int) [][]string {
	out := make([][]string, len(table.Cells))
	for i, row := range table.Cells {
		out[i] = make([]string, len(row))
		for j, p := range row {
			out[i][j] = strconv.FormatFloat(p, 'f', precision, 64)
		}
	}
	return out
}
