// Package formatter implements the s0 source code formatter.
package formatter

import (
	"strings"

	"github.com/s0lang/s0/pkg/ast"
)

// Format renders a parsed forest in canonical form: one top-level form
// per line, single spaces between the parts of a form, number atoms
// kept as their source lexemes.
func Format(forest []ast.Node) string {
	var lines []string
	for _, node := range forest {
		lines = append(lines, formatNode(node))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func formatNode(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Symbol:
		return n.Name
	case *ast.Number:
		return n.Text
	case *ast.Form:
		parts := make([]string, len(n.Children))
		for i, child := range n.Children {
			parts[i] = formatNode(child)
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return ""
}
