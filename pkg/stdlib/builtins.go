package stdlib

import (
	"fmt"
	"math"
	"strconv"

	"github.com/s0lang/s0/pkg/diagnostics"
	"github.com/s0lang/s0/pkg/evaluator"
)

// RegisterDefaults adds the default native procedures.
func RegisterDefaults(r *Registry) {
	// Arithmetic
	r.Register(Fn{Name: "*", Execute: nativeMul})
}

// Constants returns the numeric bindings seeded into every root scope.
func Constants() map[string]float64 {
	return map[string]float64{
		"pi": math.Pi,
	}
}

// * (a b) → number
func nativeMul(args []evaluator.S0Value) (evaluator.S0Value, error) {
	if len(args) != 2 {
		return nil, &evaluator.S0RuntimeError{
			Code:    diagnostics.ENativeArity,
			Message: fmt.Sprintf("*: expected 2 arguments, got %d", len(args)),
			Details: map[string]string{"expected": "2", "got": strconv.Itoa(len(args))},
		}
	}
	factors := make([]float64, len(args))
	for i, arg := range args {
		num, ok := arg.(evaluator.S0Number)
		if !ok {
			return nil, &evaluator.S0RuntimeError{
				Code:    diagnostics.ENativeType,
				Message: fmt.Sprintf("*: argument %d is not a number (got %s)", i+1, evaluator.KindName(arg)),
				Details: map[string]string{"argument": strconv.Itoa(i + 1), "kind": evaluator.KindName(arg)},
			}
		}
		factors[i] = num.Value
	}
	return evaluator.NewNumber(factors[0] * factors[1]), nil
}
