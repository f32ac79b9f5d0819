// Package parser builds s0 syntax forests from token streams.
package parser

import (
	"fmt"
	"strconv"

	"github.com/s0lang/s0/pkg/ast"
	"github.com/s0lang/s0/pkg/diagnostics"
	"github.com/s0lang/s0/pkg/lexer"
)

// Parse tokenizes and parses source text into a forest of top-level nodes.
// On success the diagnostics slice is empty. On a balance error the forest
// is nil and the diagnostics describe the first violation.
//
// The parser keeps a stack of in-progress forms. Index 0 is an implicit
// top-level form whose children become the returned forest; '(' pushes a
// new form, ')' pops the top and appends it to the new top, and every
// other token appends a classified leaf.
func Parse(source, filename string) ([]ast.Node, []diagnostics.Diagnostic) {
	tokens := lexer.Tokenize(source, filename)

	stack := []*ast.Form{{}}

	for _, tok := range tokens {
		switch tok.Type {
		case lexer.TokLParen:
			form := &ast.Form{Span: tok.Span}
			stack = append(stack, form)

		case lexer.TokRParen:
			if len(stack) == 1 {
				span := tok.Span
				diag := diagnostics.MakeDiag(
					diagnostics.EUnbalanced,
					"unbalanced parentheses: unexpected ')'",
					&span,
					"there is no open form for this ')' to close",
				)
				return nil, []diagnostics.Diagnostic{diag}
			}
			form := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			form.Span.EndLine = tok.Span.EndLine
			form.Span.EndCol = tok.Span.EndCol
			top := stack[len(stack)-1]
			top.Children = append(top.Children, form)

		case lexer.TokAtom:
			top := stack[len(stack)-1]
			top.Children = append(top.Children, classifyAtom(tok))

		case lexer.TokEOF:
			// handled after the loop
		}
	}

	if open := len(stack) - 1; open > 0 {
		span := stack[len(stack)-1].Span
		diag := diagnostics.MakeDiag(
			diagnostics.EUnbalanced,
			fmt.Sprintf("unbalanced parentheses: %d unclosed '('", open),
			&span,
			"add ')' to close the open form",
		)
		return nil, []diagnostics.Diagnostic{diag}
	}

	return stack[0].Children, nil
}

// classifyAtom turns an atom token into a leaf node. An atom is a number
// iff its full text parses as a float64 literal; otherwise it is a symbol.
func classifyAtom(tok lexer.Token) ast.Node {
	if v, err := strconv.ParseFloat(tok.Value, 64); err == nil {
		return &ast.Number{Span: tok.Span, Text: tok.Value, Value: v}
	}
	return &ast.Symbol{Span: tok.Span, Name: tok.Value}
}

// IsIncomplete reports whether source reads as a prefix of a well-formed
// program: every ')' so far matches an '(', but at least one form is still
// open at the end. REPLs use this to choose between a continuation prompt
// and reporting an error.
func IsIncomplete(source string) bool {
	depth := 0
	for _, tok := range lexer.Tokenize(source, "") {
		switch tok.Type {
		case lexer.TokLParen:
			depth++
		case lexer.TokRParen:
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth > 0
}
