package docstore

import (
	"encoding/json"
	"fmt"
	"time"
)

// timeTag marks a timestamp in JSON-backed stores so it round-trips as
// time.Time instead of a bare string.
const timeTag = "$time"

// EncodeJSON serializes a document for the postgres and redis backends.
func EncodeJSON(doc Document) ([]byte, error) {
	b, err := json.Marshal(tagTimes(map[string]any(doc)))
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return b, nil
}

// DecodeJSON is the inverse of EncodeJSON.
func DecodeJSON(b []byte) (Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	out, _ := untagTimes(raw).(map[string]any)
	return Document(out), nil
}

// EncodeJSONValue encodes a single value the same way a document field is
// encoded. Postgres filters compare against it.
func EncodeJSONValue(v any) ([]byte, error) {
	return json.Marshal(tagTimes(v))
}

func tagTimes(v any) any {
	switch t := v.(type) {
	case time.Time:
		return map[string]any{timeTag: t.UTC().Format(time.RFC3339Nano)}
	case *time.Time:
		if t == nil {
			return nil
		}
		return tagTimes(*t)
	case Document:
		return tagTimes(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = tagTimes(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = tagTimes(item)
		}
		return out
	case []Document:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = tagTimes(item)
		}
		return out
	default:
		return v
	}
}

func untagTimes(v any) any {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 1 {
			if s, ok := t[timeTag].(string); ok {
				if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
					return parsed
				}
			}
		}
		for k, item := range t {
			t[k] = untagTimes(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = untagTimes(item)
		}
		return t
	default:
		return v
	}
}
