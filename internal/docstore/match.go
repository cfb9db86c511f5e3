package docstore

import (
	"sort"
	"strings"
	"time"
)

// Clone deep-copies a document so callers never share nested maps or slices
// with a backend.
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		return map[string]any(Clone(t))
	case map[string]any:
		return map[string]any(Clone(Document(t)))
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []Document:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = map[string]any(Clone(item))
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = map[string]any(Clone(Document(item)))
		}
		return out
	default:
		return v
	}
}

// Matches reports whether doc satisfies every filter.
func Matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		v, ok := doc[f.Field]
		if !ok || !equalValues(v, f.Value) {
			return false
		}
	}
	return true
}

// SortSnapshots orders snapshots by a top-level field. Documents missing the
// field sort first. Ties keep their relative order.
func SortSnapshots(snaps []Snapshot, field string, desc bool) {
	if field == "" {
		return
	}
	sort.SliceStable(snaps, func(i, j int) bool {
		c := compareValues(snaps[i].Data[field], snaps[j].Data[field])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func equalValues(a, b any) bool {
	if af, ok := toFloat(a); ok && isNumber(a) {
		bf, ok := toFloat(b)
		return ok && isNumber(b) && af == bf
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return false
}

func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if isNumber(a) && isNumber(b) {
		af, _ := toFloat(a)
		bf, _ := toFloat(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}
