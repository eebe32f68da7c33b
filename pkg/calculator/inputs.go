package calculator

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Inputs holds raw calculator inputs keyed by field ID.
type Inputs map[string]any

// canonicalize maps input keys onto field IDs case-insensitively and returns
// the keys that matched no field, sorted.
func canonicalize(in Inputs, fields []Field) (Inputs, []string) {
	byLower := make(map[string]string, len(fields))
	for _, f := range fields {
		byLower[strings.ToLower(f.ID)] = f.ID
	}

	out := make(Inputs, len(in))
	var unknown []string
	for key, value := range in {
		id, ok := byLower[strings.ToLower(key)]
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		// An exact-case key wins over a case-folded duplicate.
		if _, exists := out[id]; exists && key != id {
			continue
		}
		out[id] = value
	}
	sort.Strings(unknown)
	return out, unknown
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return true
	}
	return false
}

// Float coerces a raw input value to a number the way validation does.
func Float(v any) (float64, bool) {
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
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
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		cleaned := strings.NewReplacer(",", "", "_", "", "$", "", "%", "").Replace(strings.TrimSpace(n))
		f, err := strconv.ParseFloat(cleaned, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y", "1", "on":
			return true, true
		case "false", "no", "n", "0", "off":
			return false, true
		}
		return false, false
	default:
		if f, ok := toFloat(v); ok && (f == 0 || f == 1) {
			return f == 1, true
		}
		return false, false
	}
}

func toOption(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	case fmt.Stringer:
		return s.String(), true
	default:
		if f, ok := toFloat(v); ok && !math.IsNaN(f) {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
		return "", false
	}
}
