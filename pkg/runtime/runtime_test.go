package runtime_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/s0lang/s0/pkg/diagnostics"
	"github.com/s0lang/s0/pkg/evaluator"
	"github.com/s0lang/s0/pkg/parser"
	"github.com/s0lang/s0/pkg/runtime"
	"github.com/s0lang/s0/pkg/stdlib"
)

// --- helpers ---

func mustRun(t *testing.T, src string) *runtime.Result {
	t.Helper()
	res, err := runtime.New().Run(context.Background(), src, "test.s0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return res
}

func expectNumber(t *testing.T, val evaluator.S0Value, expected float64) {
	t.Helper()
	num, ok := val.(evaluator.S0Number)
	if !ok {
		t.Fatalf("expected S0Number, got %T (%v)", val, val)
	}
	if num.Value != expected {
		t.Errorf("got %v, want %v", num.Value, expected)
	}
}

// --- 1. Run ---

func TestRun_ValueStream(t *testing.T) {
	res := mustRun(t, `(define r 10) (* pi (* r r))`)
	if len(res.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(res.Results))
	}
	if res.Results[0].Value != nil {
		t.Errorf("define should produce no value, got %v", res.Results[0].Value)
	}
	expectNumber(t, res.Results[1].Value, math.Pi*100)
}

func TestRun_ParseErrorIsDiagnosticError(t *testing.T) {
	_, err := runtime.New().Run(context.Background(), `(* 1 2`, "test.s0")
	if err == nil {
		t.Fatalf("expected error")
	}
	var diagErr *runtime.DiagnosticError
	if !errors.As(err, &diagErr) {
		t.Fatalf("expected *DiagnosticError, got %T: %v", err, err)
	}
	if len(diagErr.Diagnostics) == 0 || diagErr.Diagnostics[0].Code != diagnostics.EUnbalanced {
		t.Errorf("diagnostics = %v, want %s", diagErr.Diagnostics, diagnostics.EUnbalanced)
	}
	if !strings.Contains(diagErr.Error(), diagnostics.EUnbalanced) {
		t.Errorf("Error() = %q should mention the code", diagErr.Error())
	}
}

func TestRun_RuntimeErrorKeepsPartialResults(t *testing.T) {
	res, err := runtime.New().Run(context.Background(), `(define a 2) (nope)`, "test.s0")
	var rtErr *evaluator.S0RuntimeError
	if !errors.As(err, &rtErr) || rtErr.Code != diagnostics.EUnbound {
		t.Fatalf("expected %s, got %v", diagnostics.EUnbound, err)
	}
	if res == nil || len(res.Results) != 1 {
		t.Fatalf("expected 1 completed form, got %+v", res)
	}
}

func TestRun_DoesNotValidate(t *testing.T) {
	// Duplicate parameters are a check-time diagnostic; run still
	// executes the program, with the later binding winning.
	src := `(define f (lambda (a a) a)) (f 1 2)`
	res := mustRun(t, src)
	expectNumber(t, res.Results[1].Value, 2)

	diags := runtime.New().Check(src, "test.s0")
	if len(diags) != 1 || diags[0].Code != diagnostics.EDupParam {
		t.Errorf("Check diagnostics = %v, want one %s", diags, diagnostics.EDupParam)
	}
}

// --- 2. Check and Format ---

func TestCheck_Clean(t *testing.T) {
	diags := runtime.New().Check(`(define r 10) (* pi (* r r))`, "test.s0")
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
}

func TestCheck_ParseDiagnosticsComeFirst(t *testing.T) {
	diags := runtime.New().Check(`(* 1`, "test.s0")
	if len(diags) == 0 || diags[0].Code != diagnostics.EUnbalanced {
		t.Errorf("diagnostics = %v, want %s", diags, diagnostics.EUnbalanced)
	}
}

func TestFormat_Canonical(t *testing.T) {
	out, err := runtime.New().Format("( define   r\n10 )", "test.s0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "(define r 10)\n" {
		t.Errorf("got %q, want %q", out, "(define r 10)\n")
	}
}

// --- 3. Options and sessions ---

func TestWithNatives_CustomRegistry(t *testing.T) {
	reg := stdlib.NewRegistry()
	reg.Register(stdlib.Fn{
		Name: "double",
		Execute: func(args []evaluator.S0Value) (evaluator.S0Value, error) {
			num := args[0].(evaluator.S0Number)
			return evaluator.NewNumber(num.Value * 2), nil
		},
	})
	rt := runtime.New(runtime.WithNatives(reg))

	res, err := rt.Run(context.Background(), `(double 4)`, "test.s0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectNumber(t, res.Results[0].Value, 8)

	// The default '*' is absent from a custom registry, so the root
	// scope never binds it.
	_, err = rt.Run(context.Background(), `(* 1 2)`, "test.s0")
	var rtErr *evaluator.S0RuntimeError
	if !errors.As(err, &rtErr) || rtErr.Code != diagnostics.EUnbound {
		t.Errorf("expected %s, got %v", diagnostics.EUnbound, err)
	}
}

func TestWithTrace_EventsTagged(t *testing.T) {
	var events []evaluator.TraceEvent
	rt := runtime.New(
		runtime.WithRunID("custom-run"),
		runtime.WithTrace(func(ev evaluator.TraceEvent) { events = append(events, ev) }),
	)
	if _, err := rt.Run(context.Background(), `(* 2 3)`, "test.s0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) == 0 {
		t.Fatalf("no trace events emitted")
	}
	for _, ev := range events {
		if ev.RunID != "custom-run" {
			t.Errorf("event %q run id = %q, want %q", ev.Event, ev.RunID, "custom-run")
		}
	}
}

func TestNewSession_DefinesAccumulate(t *testing.T) {
	sess := runtime.New().NewSession()
	forest, diags := parser.Parse(`(define x 6) (* x 7)`, "repl")
	if len(diags) > 0 {
		t.Fatalf("parse errors: %v", diags)
	}
	if _, err := sess.Eval(forest[0]); err != nil {
		t.Fatalf("define: %v", err)
	}
	val, err := sess.Eval(forest[1])
	if err != nil {
		t.Fatalf("multiply: %v", err)
	}
	expectNumber(t, val, 42)
}
