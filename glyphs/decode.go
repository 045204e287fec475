package glyphs

import (
	"strconv"
	"strings"
)

// Property lists in OpenStep format know only strings, arrays and
// dictionaries; numbers arrive as strings. Binary and XML property lists do
// carry typed numbers. The helpers below accept both.

func dict(v any) map[string]any {
	if d, ok := v.(map[string]any); ok {
		return d
	}
	return nil
}

func list(v any) []any {
	if l, ok := v.([]any); ok {
		return l
	}
	return nil
}

func str(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	}
	return ""
}

func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func numOr(v any, dflt float64) float64 {
	if f, ok := toNumber(v); ok {
		return f
	}
	return dflt
}

func boolOr(v any, dflt bool) bool {
	if f, ok := toNumber(v); ok {
		return f != 0
	}
	return dflt
}

// numbers parses a list of numbers, either given as an array or in the
// brace notation "{a, b, c}".
func numbers(v any) []float64 {
	var items []string
	if l := list(v); l != nil {
		for _, x := range l {
			items = append(items, str(x))
		}
	} else if s := str(v); s != "" {
		s = strings.Trim(strings.TrimSpace(s), "{}()")
		items = strings.Split(s, ",")
	}
	nums := make([]float64, 0, len(items))
	for _, item := range items {
		if f, err := strconv.ParseFloat(strings.TrimSpace(item), 64); err == nil {
			nums = append(nums, f)
		}
	}
	return nums
}

// plainValue turns nested property list values into plain Go values,
// converting map and array element types where necessary.
func plainValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = plainValue(e)
		}
		return m
	case []any:
		l := make([]any, len(x))
		for i, e := range x {
			l[i] = plainValue(e)
		}
		return l
	}
	return v
}
