package evaluator_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/s0lang/s0/pkg/evaluator"
)

func TestNewValues(t *testing.T) {
	// Ensure all constructors return valid S0Value implementations
	values := []evaluator.S0Value{
		evaluator.NewNumber(42),
		evaluator.NewNumber(3.14),
		evaluator.NewNative("*"),
	}
	for i, v := range values {
		if v == nil {
			t.Errorf("constructor %d returned nil", i)
		}
	}
}

func TestKindName(t *testing.T) {
	tests := []struct {
		val  evaluator.S0Value
		want string
	}{
		{evaluator.NewNumber(1), "number"},
		{evaluator.NewNative("*"), "native procedure"},
		{evaluator.S0Procedure{Params: []string{"x"}}, "procedure"},
	}
	for _, tt := range tests {
		if got := evaluator.KindName(tt.val); got != tt.want {
			t.Errorf("KindName(%v) = %q, want %q", tt.val, got, tt.want)
		}
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		val  evaluator.S0Value
		want string
	}{
		{"whole number", evaluator.NewNumber(10), "10"},
		{"fractional", evaluator.NewNumber(3.5), "3.5"},
		{"negative", evaluator.NewNumber(-2), "-2"},
		{"native", evaluator.NewNative("*"), "#<native *>"},
		{"procedure", evaluator.S0Procedure{Params: []string{"a", "b"}}, "#<procedure (a b)>"},
		{"thunk", evaluator.S0Procedure{}, "#<procedure ()>"},
		{"no value", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evaluator.FormatValue(tt.val); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{10, "10"},
		{-3, "-3"},
		{3.5, "3.5"},
		{0.25, "0.25"},
		{1000000, "1000000"},
	}
	for _, tt := range tests {
		if got := evaluator.FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatNumberRoundTrips(t *testing.T) {
	// Fractional output must parse back to the exact same float.
	for _, f := range []float64{math.Pi, math.Pi * 100, 1.0 / 3.0, 2.5e-7} {
		s := evaluator.FormatNumber(f)
		back, err := strconv.ParseFloat(s, 64)
		if err != nil {
			t.Fatalf("ParseFloat(%q): %v", s, err)
		}
		if back != f {
			t.Errorf("%q does not round-trip: got %v, want %v", s, back, f)
		}
	}
}

func TestValueToJSON(t *testing.T) {
	tests := []struct {
		name string
		val  evaluator.S0Value
		want string
	}{
		{"whole number", evaluator.NewNumber(10), "10"},
		{"fractional", evaluator.NewNumber(3.14), "3.14"},
		{"native", evaluator.NewNative("*"), `"#<native *>"`},
		{"procedure", evaluator.S0Procedure{Params: []string{"x"}}, `"#<procedure (x)>"`},
		{"no value", nil, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evaluator.ValueToJSONString(tt.val); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
