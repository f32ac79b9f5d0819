// Package evaluator implements the s0 tree-walking evaluator.
package evaluator

import (
	"fmt"
	"strings"

	"github.com/s0lang/s0/pkg/ast"
)

// S0Value is the interface for all s0 runtime values.
// Use the sealed marker method to restrict implementations to this package.
// A nil S0Value stands for "no value", the result of a define form.
type S0Value interface {
	s0value() // sealed marker
}

// S0Number represents a numeric value.
type S0Number struct {
	Value float64
}

func (S0Number) s0value() {}

// S0Native names an entry in the external native dispatch table.
// Arity and argument types are owned by the table, not by the evaluator.
type S0Native struct {
	Name string
}

func (S0Native) s0value() {}

// S0Procedure is a closure: parameter names, a body node aliasing the
// original syntax forest, and the scope that was active when the lambda
// form was evaluated. Captured is an id into the scope store, never a
// pointer, so the closure outlives the call frame that created it.
type S0Procedure struct {
	Params   []string
	Body     ast.Node
	Captured ScopeID
}

func (S0Procedure) s0value() {}

// NewNumber creates a numeric value.
func NewNumber(n float64) S0Value {
	return S0Number{Value: n}
}

// NewNative creates a native procedure reference.
func NewNative(name string) S0Value {
	return S0Native{Name: name}
}

// KindName returns a short name for a value's kind, for error messages.
func KindName(v S0Value) string {
	switch v.(type) {
	case S0Number:
		return "number"
	case S0Native:
		return "native procedure"
	case S0Procedure:
		return "procedure"
	default:
		return "unknown"
	}
}

// FormatValue renders a value for display. Whole numbers print without a
// decimal point. A nil value renders as the empty string.
func FormatValue(v S0Value) string {
	switch val := v.(type) {
	case S0Number:
		return FormatNumber(val.Value)
	case S0Native:
		return fmt.Sprintf("#<native %s>", val.Name)
	case S0Procedure:
		return fmt.Sprintf("#<procedure (%s)>", strings.Join(val.Params, " "))
	}
	return ""
}
