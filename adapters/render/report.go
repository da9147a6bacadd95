package render

import (
	"fmt"
	"strings"

	"bayesview/domain/cpd"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Section is one variable's entry in a report. Err explains a missing table.
type Section struct {
	Table    *cpd.Table
	Variable string
	Parents  []string
	Err      error
}

// Markdown renders a report with one heading and pipe table per section
func Markdown(title string, sections []Section, precision int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))

	for _, s := range sections {
		sb.WriteString(fmt.Sprintf("## %s\n\n", s.Variable))
		if len(s.Parents) > 0 {
			sb.WriteString(fmt.Sprintf("Parents: %s\n\n", strings.Join(s.Parents, ", ")))
		}
		if s.Err != nil {
			sb.WriteString(fmt.Sprintf("_%s_\n\n", s.Err))
			continue
		}
		if s.Table == nil {
			continue
		}

		cells := FormatCells(s.Table, precision)
		sb.WriteString("| |")
		for _, l := range s.Table.ColLabels {
			sb.WriteString(" " + escapeCell(l) + " |")
		}
		sb.WriteString("\n|---|")
		for range s.Table.ColLabels {
			sb.WriteString("---:|")
		}
		sb.WriteString("\n")
		for i, l := range s.Table.RowLabels {
			sb.WriteString("| " + escapeCell(l) + " |")
			for _, c := range cells[i] {
				sb.WriteString(" " + c + " |")
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// escapeCell keeps a label's pipes from splitting its table cell
func escapeCell(label string) string {
	return strings.ReplaceAll(label, "|", `\|`)
}

// HTML converts a Markdown report into a standalone HTML page
func HTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "CPD report",
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}
