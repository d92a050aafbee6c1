package bookingdata

import (
	"fmt"
	"strings"
)

// ValidatePath rejects empty paths and paths with empty segments ("a..b", ".a", "a.").
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty field path")
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return fmt.Errorf("field path %q has an empty segment", path)
		}
	}
	return nil
}

// BaseField returns the first dot-segment of path. Approval status is tracked
// at this granularity, so "foodMenu.day1" and "foodMenu.day2" share one status.
func BaseField(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

// Get walks doc one segment at a time. It reports false as soon as a segment is
// missing or an intermediate value is nil or not a map. doc is never mutated.
func Get(doc map[string]any, path string) (any, bool) {
	segs := strings.Split(path, ".")
	cur := doc
	for i, seg := range segs {
		v, ok := cur[seg]
		if !ok {
			return nil, false
		}
		if i == len(segs)-1 {
			return v, true
		}
		next, ok := v.(map[string]any)
		if !ok || next == nil {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Set assigns value at path, creating intermediate maps as needed.
//
// An intermediate that exists but is not a map (e.g. a string) is replaced by a
// fresh map, discarding its previous value.
func Set(doc map[string]any, path string, value any) {
	segs := strings.Split(path, ".")
	cur := doc
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok || next == nil {
			next = map[string]any{}
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = value
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = cloneValue(vv)
		}
		return out
	default:
		return v
	}
}
