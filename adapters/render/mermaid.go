// Package render turns models, layouts and CPD tables into text for
// terminals, Markdown/HTML reports and Mermaid diagrams.
package render

import (
	"fmt"
	"strings"

	"bayesview/domain/network"
)

// Mermaid produces a flowchart of the model. A non-empty focus is styled as
// the current selection.
func Mermaid(model *network.Model, focus network.Variable) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, v := range model.Variables() {
		opener, closer := "[", "]"
		if len(model.ParentsOf(v)) == 0 {
			opener, closer = "((", "))" // roots
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", mermaidID(v), opener, escapeLabel(string(v)), closer))
	}
	for _, e := range model.Edges() {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", mermaidID(e.Parent), mermaidID(e.Child)))
	}

	if focus != "" && model.Has(focus) {
		sb.WriteString("\n    classDef focus fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString(fmt.Sprintf("    class %s focus;\n", mermaidID(focus)))
	}
	return sb.String()
}

func mermaidID(v network.Variable) string {
	return "v_" + strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, string(v))
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
