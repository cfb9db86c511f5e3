package docstore

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// The helpers below read a field out of a document and coerce whatever the
// backend produced (int64 from Firestore, float64 from JSON, json.Number,
// RFC3339 strings) into the Go type the caller wants. Missing or
// unconvertible values yield the zero value and ok=false.

func String(doc Document, key string) string {
	s, _ := doc[key].(string)
	return s
}

func Bool(doc Document, key string) bool {
	b, _ := doc[key].(bool)
	return b
}

func Int(doc Document, key string) int {
	n, _ := toFloat(doc[key])
	return int(math.Round(n))
}

func Float(doc Document, key string) float64 {
	n, _ := toFloat(doc[key])
	return n
}

// OptionalInt returns nil when the field is absent or null.
func OptionalInt(doc Document, key string) *int {
	n, ok := toFloat(doc[key])
	if !ok {
		return nil
	}
	v := int(math.Round(n))
	return &v
}

// OptionalFloat returns nil when the field is absent or null.
func OptionalFloat(doc Document, key string) *float64 {
	n, ok := toFloat(doc[key])
	if !ok {
		return nil
	}
	return &n
}

// Time normalizes a stored timestamp.
func Time(doc Document, key string) time.Time {
	t, _ := ToTime(doc[key])
	return t
}

// ToTime converts a stored timestamp value to time.Time.
func ToTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

// List returns the field as a slice of documents. Non-map elements are skipped.
func List(doc Document, key string) []Document {
	raw, ok := doc[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Document, 0, len(raw))
	for _, item := range raw {
		if m, ok := AsDocument(item); ok {
			out = append(out, m)
		}
	}
	return out
}

// AsDocument accepts both Document and map[string]any.
func AsDocument(v any) (Document, bool) {
	switch m := v.(type) {
	case Document:
		return m, true
	case map[string]any:
		return Document(m), true
	default:
		return nil, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Map returns a nested object field, or nil.
func Map(doc Document, key string) Document {
	m, _ := AsDocument(doc[key])
	return m
}
