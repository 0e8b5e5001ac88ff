package hierarchy

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

func fieldError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}

// CoerceInt converts a loosely typed request value into an int.
// Numbers must be integral; strings must parse as base-10 integers.
func CoerceInt(field string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, fieldError(field, fmt.Sprintf("is not an integer: %v", n))
		}
		if n < float64(math.MinInt) || n >= -float64(math.MinInt) {
			return 0, fieldError(field, fmt.Sprintf("is out of range: %v", n))
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fieldError(field, fmt.Sprintf("is not an integer: %q", n.String()))
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fieldError(field, fmt.Sprintf("is not an integer: %q", n))
		}
		return i, nil
	}
	return 0, fieldError(field, fmt.Sprintf("has unsupported type %T", v))
}

// CoerceFloat converts a loosely typed request value into a float64.
func CoerceFloat(field string, v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fieldError(field, fmt.Sprintf("is not a number: %q", n.String()))
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fieldError(field, fmt.Sprintf("is not a number: %q", n))
		}
		f = parsed
	default:
		return 0, fieldError(field, fmt.Sprintf("has unsupported type %T", v))
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fieldError(field, "must be finite")
	}
	return f, nil
}
