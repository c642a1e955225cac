package midocean

import (
	"strconv"
	"strings"
	"time"
)

// str returns m[key] as a trimmed string. Numbers are formatted without
// exponent so numeric codes survive.
func str(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// list returns m[key] as a slice of objects, skipping non-object entries.
func list(m map[string]any, key string) []map[string]any {
	raw, ok := m[key].([]any)
	if !ok {
		if typed, ok := m[key].([]map[string]any); ok {
			return typed
		}
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// parseFloat reads a number that may be a JSON number or a string with a
// comma decimal separator ("12,50"). Returns nil when absent or malformed.
func parseFloat(v any) *float64 {
	switch x := v.(type) {
	case float64:
		return &x
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(x, ",", "."))
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// parseInt reads an integer that may use "." or "," as a thousands
// separator ("1.000"). Returns nil when absent or malformed.
func parseInt(v any) *int {
	switch x := v.(type) {
	case float64:
		n := int(x)
		return &n
	case string:
		s := strings.NewReplacer(".", "", ",", "").Replace(strings.TrimSpace(x))
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// parseDate reads a YYYY-MM-DD date.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &t
}
