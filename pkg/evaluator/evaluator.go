package evaluator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/s0lang/s0/pkg/ast"
	"github.com/s0lang/s0/pkg/diagnostics"
)

// NativeFn implements one native procedure. It receives the evaluated
// arguments and returns a value or an error. Returned *S0RuntimeError
// values propagate unchanged; any other error is wrapped with ENative.
type NativeFn func(args []S0Value) (S0Value, error)

// ExecOptions configures an evaluation session.
type ExecOptions struct {
	// Natives is the dispatch table for native procedures. Every key is
	// bound in the root scope as an S0Native referencing it by name.
	Natives map[string]NativeFn

	// Constants maps names to numbers seeded in the root scope.
	Constants map[string]float64

	// Trace, if non-nil, receives structured trace events.
	Trace func(TraceEvent)

	// RunID is an identifier included in trace events.
	RunID string
}

// S0RuntimeError is a structured runtime error with a diagnostic code.
type S0RuntimeError struct {
	Code    string
	Message string
	Span    *ast.Span
	Details map[string]string
}

func (e *S0RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// TraceEvent is a structured trace record emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId,omitempty"`
	Event     string            `json:"event"`
	Span      *ast.Span         `json:"span,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// Trace event names.
const (
	TraceRunStart   = "run_start"
	TraceRunEnd     = "run_end"
	TraceFormStart  = "form_start"
	TraceFormEnd    = "form_end"
	TraceDefine     = "define"
	TraceLambda     = "lambda"
	TraceApply      = "apply"
	TraceNativeCall = "native_call"
)

// Session holds the state shared by every form of a program: the scope
// store and the root scope. Definitions accumulate in the root scope,
// so a later form sees the bindings of an earlier one.
type Session struct {
	opts  ExecOptions
	store *Store
	root  ScopeID
}

// NewSession creates a session with a fresh store whose root scope is
// seeded from the options' native table and constants.
func NewSession(opts ExecOptions) *Session {
	store := NewStore()
	names := make([]string, 0, len(opts.Natives))
	for name := range opts.Natives {
		names = append(names, name)
	}
	root := NewRootScope(store, names, opts.Constants)
	return &Session{opts: opts, store: store, root: root}
}

// Store returns the session's scope store.
func (s *Session) Store() *Store {
	return s.store
}

// Root returns the session's root scope id.
func (s *Session) Root() ScopeID {
	return s.root
}

// FormResult is the outcome of one top-level form. A nil Value means
// the form produced no value, which is how define forms evaluate.
type FormResult struct {
	Value S0Value
	Span  ast.Span
}

// ExecResult is the outcome of evaluating a forest.
type ExecResult struct {
	Results []FormResult
}

// Execute evaluates a forest in a fresh session.
func Execute(ctx context.Context, forest []ast.Node, opts ExecOptions) (*ExecResult, error) {
	return NewSession(opts).Execute(ctx, forest)
}

// Execute evaluates the forms in order against the session's root
// scope and stops at the first error. The returned result always holds
// the forms that completed before the stop. The context is checked
// between forms, not inside one.
func (s *Session) Execute(ctx context.Context, forest []ast.Node) (*ExecResult, error) {
	res := &ExecResult{}
	s.emit(TraceRunStart, nil)
	for _, node := range forest {
		if err := ctx.Err(); err != nil {
			s.emit(TraceRunEnd, nil)
			return res, err
		}
		s.emit(TraceFormStart, spanOf(node))
		val, err := s.eval(node, s.root)
		if err != nil {
			s.emit(TraceRunEnd, nil)
			return res, err
		}
		s.emit(TraceFormEnd, spanOf(node))
		res.Results = append(res.Results, FormResult{Value: val, Span: node.NodeSpan()})
	}
	s.emit(TraceRunEnd, nil)
	return res, nil
}

// Eval evaluates a single form in the session's root scope. A nil
// value with a nil error means the form produced no value.
func (s *Session) Eval(node ast.Node) (S0Value, error) {
	return s.eval(node, s.root)
}

func (s *Session) eval(node ast.Node, scope ScopeID) (S0Value, error) {
	switch n := node.(type) {
	case *ast.Number:
		return NewNumber(n.Value), nil
	case *ast.Symbol:
		return s.lookup(n, scope)
	case *ast.Form:
		return s.evalForm(n, scope)
	default:
		return nil, &S0RuntimeError{
			Code:    diagnostics.EMalformedForm,
			Message: fmt.Sprintf("cannot evaluate %s node", node.Kind()),
			Span:    spanOf(node),
		}
	}
}

// lookup resolves a symbol by walking the scope chain from the current
// scope toward the root and reading the binding from its owner.
func (s *Session) lookup(sym *ast.Symbol, scope ScopeID) (S0Value, error) {
	owner, found, err := s.store.Owner(scope, sym.Name)
	if err != nil {
		return nil, withSpan(err, &sym.Span)
	}
	if !found {
		return nil, &S0RuntimeError{
			Code:    diagnostics.EUnbound,
			Message: fmt.Sprintf("unbound symbol '%s'", sym.Name),
			Span:    &sym.Span,
			Details: map[string]string{"name": sym.Name},
		}
	}
	sc, err := s.store.Resolve(owner)
	if err != nil {
		return nil, withSpan(err, &sym.Span)
	}
	val, _ := sc.Get(sym.Name)
	return val, nil
}

func (s *Session) evalForm(form *ast.Form, scope ScopeID) (S0Value, error) {
	if len(form.Children) == 0 {
		return nil, &S0RuntimeError{
			Code:    diagnostics.EMalformedForm,
			Message: "empty form",
			Span:    &form.Span,
		}
	}
	if head, ok := form.Children[0].(*ast.Symbol); ok {
		switch head.Name {
		case "define":
			return s.evalDefine(form, scope)
		case "lambda":
			return s.evalLambda(form, scope)
		}
	}
	return s.evalApply(form, scope)
}

// evalDefine handles (define name expr). The expression is evaluated
// first and the binding written only on success, so a failing define
// leaves the scope untouched.
func (s *Session) evalDefine(form *ast.Form, scope ScopeID) (S0Value, error) {
	if len(form.Children) != 3 {
		return nil, &S0RuntimeError{
			Code:    diagnostics.EMalformedForm,
			Message: fmt.Sprintf("define expects a name and an expression, got %d parts", len(form.Children)-1),
			Span:    &form.Span,
		}
	}
	name, ok := form.Children[1].(*ast.Symbol)
	if !ok {
		return nil, &S0RuntimeError{
			Code:    diagnostics.EMalformedForm,
			Message: fmt.Sprintf("define target must be a symbol, got %s", form.Children[1].Kind()),
			Span:    spanOf(form.Children[1]),
		}
	}
	val, err := s.eval(form.Children[2], scope)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, &S0RuntimeError{
			Code:    diagnostics.ENoValue,
			Message: fmt.Sprintf("define '%s': expression produced no value", name.Name),
			Span:    spanOf(form.Children[2]),
		}
	}
	sc, err := s.store.Resolve(scope)
	if err != nil {
		return nil, withSpan(err, &form.Span)
	}
	sc.Set(name.Name, val)
	s.emitWithData(TraceDefine, &form.Span, map[string]string{"name": name.Name})
	return nil, nil
}

// evalLambda handles (lambda (params...) body). The resulting
// procedure captures the defining scope by id, not the call scope.
func (s *Session) evalLambda(form *ast.Form, scope ScopeID) (S0Value, error) {
	if len(form.Children) != 3 {
		return nil, &S0RuntimeError{
			Code:    diagnostics.EMalformedForm,
			Message: fmt.Sprintf("lambda expects a parameter list and a body, got %d parts", len(form.Children)-1),
			Span:    &form.Span,
		}
	}
	list, ok := form.Children[1].(*ast.Form)
	if !ok {
		return nil, &S0RuntimeError{
			Code:    diagnostics.EMalformedForm,
			Message: fmt.Sprintf("lambda parameter list must be a form, got %s", form.Children[1].Kind()),
			Span:    spanOf(form.Children[1]),
		}
	}
	params := make([]string, 0, len(list.Children))
	for _, child := range list.Children {
		sym, ok := child.(*ast.Symbol)
		if !ok {
			return nil, &S0RuntimeError{
				Code:    diagnostics.EMalformedForm,
				Message: fmt.Sprintf("lambda parameter must be a symbol, got %s", child.Kind()),
				Span:    spanOf(child),
			}
		}
		params = append(params, sym.Name)
	}
	s.emitWithData(TraceLambda, &form.Span, map[string]string{"params": strconv.Itoa(len(params))})
	return S0Procedure{Params: params, Body: form.Children[2], Captured: scope}, nil
}

// evalApply handles (op args...). The operator and arguments are all
// evaluated left to right against the caller's scope before dispatch.
func (s *Session) evalApply(form *ast.Form, scope ScopeID) (S0Value, error) {
	op, err := s.eval(form.Children[0], scope)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, &S0RuntimeError{
			Code:    diagnostics.ENoValue,
			Message: "operator expression produced no value",
			Span:    spanOf(form.Children[0]),
		}
	}
	args := make([]S0Value, 0, len(form.Children)-1)
	for _, child := range form.Children[1:] {
		val, err := s.eval(child, scope)
		if err != nil {
			return nil, err
		}
		if val == nil {
			return nil, &S0RuntimeError{
				Code:    diagnostics.ENoValue,
				Message: "argument expression produced no value",
				Span:    spanOf(child),
			}
		}
		args = append(args, val)
	}
	switch fn := op.(type) {
	case S0Native:
		return s.applyNative(fn, args, form)
	case S0Procedure:
		return s.applyProcedure(fn, args, form)
	default:
		return nil, &S0RuntimeError{
			Code:    diagnostics.ENotCallable,
			Message: fmt.Sprintf("%s value is not callable", KindName(op)),
			Span:    spanOf(form.Children[0]),
			Details: map[string]string{"kind": KindName(op)},
		}
	}
}

func (s *Session) applyNative(fn S0Native, args []S0Value, form *ast.Form) (S0Value, error) {
	impl, ok := s.opts.Natives[fn.Name]
	if !ok {
		return nil, &S0RuntimeError{
			Code:    diagnostics.EUnknownNative,
			Message: fmt.Sprintf("unknown native procedure '%s'", fn.Name),
			Span:    &form.Span,
			Details: map[string]string{"name": fn.Name},
		}
	}
	s.emitWithData(TraceNativeCall, &form.Span, map[string]string{
		"name": fn.Name,
		"args": strconv.Itoa(len(args)),
	})
	val, err := impl(args)
	if err != nil {
		var rerr *S0RuntimeError
		if errors.As(err, &rerr) {
			return nil, withSpan(err, &form.Span)
		}
		return nil, &S0RuntimeError{
			Code:    diagnostics.ENative,
			Message: fmt.Sprintf("native '%s' error: %s", fn.Name, err.Error()),
			Span:    &form.Span,
		}
	}
	return val, nil
}

// applyProcedure binds arguments in a fresh scope whose parent is the
// procedure's captured scope, not the caller's, then evaluates the
// body there. Binding stops at the shorter of the parameter and
// argument lists: extra arguments are dropped, extra parameters stay
// unbound. A body that produces no value makes the application produce
// no value.
func (s *Session) applyProcedure(fn S0Procedure, args []S0Value, form *ast.Form) (S0Value, error) {
	callID := s.store.NewScope(fn.Captured)
	sc, err := s.store.Resolve(callID)
	if err != nil {
		return nil, withSpan(err, &form.Span)
	}
	n := len(fn.Params)
	if len(args) < n {
		n = len(args)
	}
	for i := 0; i < n; i++ {
		sc.Set(fn.Params[i], args[i])
	}
	s.emitWithData(TraceApply, &form.Span, map[string]string{
		"params": strconv.Itoa(len(fn.Params)),
		"args":   strconv.Itoa(len(args)),
	})
	return s.eval(fn.Body, callID)
}

func (s *Session) emit(event string, span *ast.Span) {
	s.emitWithData(event, span, nil)
}

func (s *Session) emitWithData(event string, span *ast.Span, data map[string]string) {
	if s.opts.Trace == nil {
		return
	}
	s.opts.Trace(TraceEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		RunID:     s.opts.RunID,
		Event:     event,
		Span:      span,
		Data:      data,
	})
}

// withSpan fills the span on a runtime error that lacks one. The error
// is cloned, not mutated, so a shared error value stays untouched.
func withSpan(err error, span *ast.Span) error {
	var rerr *S0RuntimeError
	if errors.As(err, &rerr) && rerr.Span == nil {
		clone := *rerr
		clone.Span = span
		return &clone
	}
	return err
}

func spanOf(node ast.Node) *ast.Span {
	sp := node.NodeSpan()
	return &sp
}
