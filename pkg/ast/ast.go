// Package ast defines the s0 syntax tree node types.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all syntax nodes.
// Use the sealed marker method to restrict implementations to this package.
type Node interface {
	Kind() string
	NodeSpan() Span
	node() // sealed marker
}

// Symbol is a leaf atom that did not parse as a number.
type Symbol struct {
	Span Span
	Name string
}

func (n *Symbol) Kind() string   { return "Symbol" }
func (n *Symbol) NodeSpan() Span { return n.Span }
func (n *Symbol) node()          {}

// Number is a leaf atom that parsed in full as a float64 literal.
// Text preserves the source lexeme so the formatter can round-trip it.
type Number struct {
	Span  Span
	Text  string
	Value float64
}

func (n *Number) Kind() string   { return "Number" }
func (n *Number) NodeSpan() Span { return n.Span }
func (n *Number) node()          {}

// Form is a parenthesized sequence of nodes. Order is significant:
// the first child is the operator or keyword position.
type Form struct {
	Span     Span
	Children []Node
}

func (n *Form) Kind() string   { return "Form" }
func (n *Form) NodeSpan() Span { return n.Span }
func (n *Form) node()          {}
