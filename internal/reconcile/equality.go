package reconcile

import (
	"fmt"
	"strconv"
	"strings"
)

// looseEqual compares a desired value against a live value using the engine's
// comparison rule: if both sides are numeric (in any Go numeric type, or a
// string holding a number) they compare by magnitude; otherwise both sides
// compare by canonical string form. The rule is deliberately explicit rather
// than relying on interface equality, so "1" equals 1 and "on" equals any
// value that prints as on.
func looseEqual(desired, live interface{}) bool {
	dn, dok := toNumber(desired)
	ln, lok := toNumber(live)
	if dok && lok {
		return dn == ln
	}
	return formatValue(desired) == formatValue(live)
}

// toNumber coerces a value to float64 if it is numeric. Booleans are not
// numeric under this rule.
func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// isNumericText reports whether a value is a numeric-looking string. Such
// values are accepted but earn a non-fatal advisory in the message trail.
func isNumericText(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// formatValue renders a value the way it appears in messages and
// comparisons. Floats holding whole numbers print without a decimal point so
// 50 and 50.0 share a canonical form.
func formatValue(v interface{}) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	if f, ok := v.(float32); ok && float64(f) == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprint(v)
}
