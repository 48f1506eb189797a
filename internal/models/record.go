package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Record is a single row of user-supplied data. Its shape is not known ahead of
// time: values are numbers, strings, booleans or nil, exactly as they arrive
// from JSON or Firestore.
type Record map[string]any

// Number coerces the value stored under key to a float64.
// Missing keys, nil, booleans, blank strings and non-numeric strings fail.
func (r Record) Number(key string) (float64, bool) {
	v, ok := r[key]
	if !ok {
		return 0, false
	}
	return ToNumber(v)
}

// String returns the value under key in the same textual form used by filter
// comparisons. Missing keys return "".
func (r Record) String(key string) string {
	return ToString(r[key])
}

// Clone returns a shallow copy so callers can annotate rows without touching
// the widget's stored data.
func (r Record) Clone() Record {
	out := make(Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ToNumber coerces a dynamic value to a finite float64.
func ToNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToString renders a dynamic value as text. Numbers use the shortest
// representation so 10, 10.0 and "10" all compare equal.
func ToString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	}
	if f, ok := ToNumber(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
