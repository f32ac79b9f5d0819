package evaluator

import (
	"encoding/json"
	"math"
	"strconv"
)

// ValueToJSON marshals an S0Value to JSON bytes.
// Numbers output integers without decimal point; procedures and
// natives output their display form as a string. A nil value
// marshals to JSON null.
func ValueToJSON(v S0Value) ([]byte, error) {
	raw := valueToRaw(v)
	return json.Marshal(raw)
}

func valueToRaw(v S0Value) any {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case S0Number:
		// Output integers without decimal point
		if val.Value == math.Trunc(val.Value) && !math.IsInf(val.Value, 0) && !math.IsNaN(val.Value) {
			if val.Value >= math.MinInt64 && val.Value <= math.MaxInt64 {
				return int64(val.Value)
			}
		}
		return val.Value

	case S0Native, S0Procedure:
		return FormatValue(val)
	}

	return nil
}

// ValueToJSONString is a convenience that returns a string.
func ValueToJSONString(v S0Value) string {
	b, err := ValueToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// FormatNumber formats a float64 as an integer string if it's a whole number.
func FormatNumber(n float64) string {
	if n == math.Trunc(n) && !math.IsInf(n, 0) && !math.IsNaN(n) {
		if n >= math.MinInt64 && n <= math.MaxInt64 {
			return strconv.FormatInt(int64(n), 10)
		}
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}
