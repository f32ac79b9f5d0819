package main

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/s0lang/s0/internal/testutil"
	"github.com/s0lang/s0/pkg/diagnostics"
	"github.com/s0lang/s0/pkg/evaluator"
	"github.com/s0lang/s0/pkg/parser"
	"github.com/s0lang/s0/pkg/stdlib"
)

// numberTolerance absorbs the last-ulp difference between a decimal
// literal in a scenario file and the float the evaluator computes.
const numberTolerance = 1e-9

func TestConformance(t *testing.T) {
	files, err := testutil.ListScenarios(testutil.ScenariosDir)
	if err != nil {
		t.Fatalf("list scenarios: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("no scenarios found under %s", testutil.ScenariosDir)
	}

	for _, path := range files {
		scenario, err := testutil.LoadScenario(path)
		if err != nil {
			t.Fatalf("load %s: %v", path, err)
		}
		t.Run(scenario.Name, func(t *testing.T) {
			runScenario(t, scenario)
		})
	}
}

func runScenario(t *testing.T, sc *testutil.Scenario) {
	t.Helper()

	forest, diags := parser.Parse(sc.Source, sc.Name+".s0")
	if sc.ParseError != "" {
		if len(diags) == 0 {
			t.Fatalf("expected parse diagnostic %s, got none", sc.ParseError)
		}
		if diags[0].Code != sc.ParseError {
			t.Errorf("parse diagnostic = %s, want %s", diags[0].Code, sc.ParseError)
		}
		return
	}
	if len(diags) > 0 {
		t.Fatalf("unexpected parse diagnostics: %s", diagnostics.FormatDiagnostics(diags, false))
	}

	res, err := evaluator.Execute(context.Background(), forest, execOptions())
	if sc.Error != "" {
		if err == nil {
			t.Fatalf("expected runtime error %s, got none", sc.Error)
		}
		var rtErr *evaluator.S0RuntimeError
		if !errors.As(err, &rtErr) {
			t.Fatalf("expected *S0RuntimeError, got %T: %v", err, err)
		}
		if rtErr.Code != sc.Error {
			t.Errorf("error code = %s, want %s (message: %s)", rtErr.Code, sc.Error, rtErr.Message)
		}
	} else if err != nil {
		t.Fatalf("unexpected runtime error: %v", err)
	}

	if len(res.Results) != len(sc.Expect) {
		t.Fatalf("completed %d forms, want %d", len(res.Results), len(sc.Expect))
	}
	for i, want := range sc.Expect {
		checkExpectation(t, i, res.Results[i].Value, want)
	}
}

func checkExpectation(t *testing.T, index int, val evaluator.S0Value, want testutil.Expectation) {
	t.Helper()
	switch want.Kind {
	case "none":
		if val != nil {
			t.Errorf("form %d: expected no value, got %s", index, evaluator.FormatValue(val))
		}
	case "number":
		num, ok := val.(evaluator.S0Number)
		if !ok {
			t.Errorf("form %d: expected number, got %T", index, val)
			return
		}
		if math.Abs(num.Value-want.Number) > numberTolerance {
			t.Errorf("form %d: got %v, want %v", index, num.Value, want.Number)
		}
	default:
		t.Fatalf("form %d: unknown expectation kind %q", index, want.Kind)
	}
}

func execOptions() evaluator.ExecOptions {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)
	natives := make(map[string]evaluator.NativeFn)
	for name, fn := range reg.All() {
		natives[name] = fn.Execute
	}
	return evaluator.ExecOptions{
		Natives:   natives,
		Constants: stdlib.Constants(),
	}
}
