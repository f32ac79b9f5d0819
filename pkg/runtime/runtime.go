// Package runtime provides the top-level s0 runtime orchestrator.
package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/s0lang/s0/pkg/diagnostics"
	"github.com/s0lang/s0/pkg/evaluator"
	"github.com/s0lang/s0/pkg/formatter"
	"github.com/s0lang/s0/pkg/parser"
	"github.com/s0lang/s0/pkg/stdlib"
	"github.com/s0lang/s0/pkg/validator"
)

// Result holds the outcome of a program execution: one entry per
// completed top-level form, in order. A nil Value marks a form that
// produced no value.
type Result struct {
	Results []evaluator.FormResult
}

// Runtime wires together the s0 components for program execution.
type Runtime struct {
	natives *stdlib.Registry
	runID   string
	trace   func(event evaluator.TraceEvent)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithNatives sets the native-procedure registry.
func WithNatives(r *stdlib.Registry) Option {
	return func(rt *Runtime) {
		rt.natives = r
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// New creates a new Runtime with the given options.
// By default the stdlib natives are registered.
func New(opts ...Option) *Runtime {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)

	rt := &Runtime{
		natives: reg,
		runID:   "cli",
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Run parses and executes an s0 program. Static checks are Check's
// business: run executes anything that parses, and shape violations
// surface as runtime errors only when evaluation reaches them. On a
// runtime error the returned Result still holds the forms that
// completed before it.
func (rt *Runtime) Run(ctx context.Context, source, filename string) (*Result, error) {
	forest, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}

	opts := rt.buildExecOptions()
	result, err := evaluator.Execute(ctx, forest, opts)
	if err != nil {
		if result != nil {
			return &Result{Results: result.Results}, err
		}
		return nil, err
	}
	return &Result{Results: result.Results}, nil
}

// Check parses and validates an s0 program without executing it.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	forest, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return diags
	}
	return validator.Validate(forest)
}

// Format parses and formats an s0 program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	forest, diags := parser.Parse(source, filename)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return formatter.Format(forest), nil
}

// NewSession creates a persistent evaluation session with this
// runtime's natives, for interactive use.
func (rt *Runtime) NewSession() *evaluator.Session {
	return evaluator.NewSession(rt.buildExecOptions())
}

// buildExecOptions constructs evaluator options from the runtime's configuration.
func (rt *Runtime) buildExecOptions() evaluator.ExecOptions {
	nativeMap := make(map[string]evaluator.NativeFn)
	for name, fn := range rt.natives.All() {
		fnCopy := fn
		nativeMap[name] = fnCopy.Execute
	}

	return evaluator.ExecOptions{
		Natives:   nativeMap,
		Constants: stdlib.Constants(),
		Trace:     rt.trace,
		RunID:     rt.runID,
	}
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}
