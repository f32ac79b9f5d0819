// Package diagnostics defines s0 diagnostic types for parse/validation/runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/s0lang/s0/pkg/ast"
)

// Diagnostic code constants.
const (
	EUnbalanced    = "E_UNBALANCED"
	EUnbound       = "E_UNBOUND"
	ENotCallable   = "E_NOT_CALLABLE"
	ENativeArity   = "E_NATIVE_ARITY"
	ENativeType    = "E_NATIVE_TYPE"
	EUnknownNative = "E_UNKNOWN_NATIVE"
	EMalformedForm = "E_MALFORMED_FORM"
	EBadScope      = "E_BAD_SCOPE"
	ENoValue       = "E_NO_VALUE"
	ENative        = "E_NATIVE"
	EDupParam      = "E_DUP_PARAM"
	EIO            = "E_IO"
)

// Diagnostic represents a parse, validation, or runtime diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		loc = fmt.Sprintf("%s:%d:%d", d.Span.File, d.Span.StartLine, d.Span.StartCol)
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
