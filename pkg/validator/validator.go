// Package validator implements static shape checks for s0 programs.
package validator

import (
	"fmt"

	"github.com/s0lang/s0/pkg/ast"
	"github.com/s0lang/s0/pkg/diagnostics"
)

type validator struct {
	diags []diagnostics.Diagnostic
}

// Validate checks the shape of every special form in a forest and
// returns diagnostics for the violations it finds. It performs no name
// resolution: a symbol may legally be defined by a later form, so
// unbound references are a runtime concern, not a static one.
func Validate(forest []ast.Node) []diagnostics.Diagnostic {
	v := &validator{}
	for _, node := range forest {
		v.validateNode(node)
	}
	return v.diags
}

func (v *validator) addDiag(code, msg string, span *ast.Span) {
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, span, ""))
}

func (v *validator) validateNode(node ast.Node) {
	form, ok := node.(*ast.Form)
	if !ok {
		return
	}
	if len(form.Children) == 0 {
		span := form.Span
		v.addDiag(diagnostics.EMalformedForm, "empty form", &span)
		return
	}
	if head, ok := form.Children[0].(*ast.Symbol); ok {
		switch head.Name {
		case "define":
			v.validateDefine(form)
			return
		case "lambda":
			v.validateLambda(form)
			return
		}
	}
	for _, child := range form.Children {
		v.validateNode(child)
	}
}

func (v *validator) validateDefine(form *ast.Form) {
	if len(form.Children) != 3 {
		span := form.Span
		v.addDiag(diagnostics.EMalformedForm,
			fmt.Sprintf("define expects a name and an expression, got %d parts", len(form.Children)-1), &span)
		return
	}
	if _, ok := form.Children[1].(*ast.Symbol); !ok {
		span := form.Children[1].NodeSpan()
		v.addDiag(diagnostics.EMalformedForm,
			fmt.Sprintf("define target must be a symbol, got %s", form.Children[1].Kind()), &span)
	}
	v.validateNode(form.Children[2])
}

func (v *validator) validateLambda(form *ast.Form) {
	if len(form.Children) != 3 {
		span := form.Span
		v.addDiag(diagnostics.EMalformedForm,
			fmt.Sprintf("lambda expects a parameter list and a body, got %d parts", len(form.Children)-1), &span)
		return
	}
	list, ok := form.Children[1].(*ast.Form)
	if !ok {
		span := form.Children[1].NodeSpan()
		v.addDiag(diagnostics.EMalformedForm,
			fmt.Sprintf("lambda parameter list must be a form, got %s", form.Children[1].Kind()), &span)
	} else {
		seen := make(map[string]bool)
		for _, child := range list.Children {
			sym, ok := child.(*ast.Symbol)
			if !ok {
				span := child.NodeSpan()
				v.addDiag(diagnostics.EMalformedForm,
					fmt.Sprintf("lambda parameter must be a symbol, got %s", child.Kind()), &span)
				continue
			}
			if seen[sym.Name] {
				span := sym.Span
				v.addDiag(diagnostics.EDupParam,
					fmt.Sprintf("duplicate parameter '%s'", sym.Name), &span)
			}
			seen[sym.Name] = true
		}
	}
	v.validateNode(form.Children[2])
}
