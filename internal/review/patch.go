package review

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"
)

type columnKind int

const (
	columnText columnKind = iota
	columnBool
	columnStars
)

const maxTextLen = 4000

// patchable is the allow-list for PATCH /api/wl/review. Keys are both the
// request field and the column name.
var patchable = map[string]columnKind{
	"improve_one_thing":     columnText,
	"what_went_well":        columnText,
	"testimonial":           columnText,
	"testimonial_name":      columnText,
	"allow_testimonial_use": columnBool,
	"wants_follow_up":       columnBool,
	"left_google_review":    columnBool,
	"food_drinks_stars":     columnStars,
}

// Patch is a validated partial update. A nil value clears the column.
type Patch struct {
	ID     string
	Values map[string]any
}

// Columns returns the patched columns in a stable order.
func (p Patch) Columns() []string {
	cols := make([]string, 0, len(p.Values))
	for c := range p.Values {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// ParsePatch validates a PATCH body. Keys outside the allow-list are ignored;
// a body with none of them is rejected.
func ParsePatch(body map[string]json.RawMessage) (Patch, error) {
	var id string
	if raw, ok := body["id"]; ok {
		_ = json.Unmarshal(raw, &id)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Patch{}, invalid("id is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Patch{}, invalid("id is not a valid review id")
	}

	p := Patch{ID: id, Values: map[string]any{}}
	for key, raw := range body {
		kind, ok := patchable[key]
		if !ok {
			continue
		}
		v, err := decodeColumn(key, kind, raw)
		if err != nil {
			return Patch{}, err
		}
		p.Values[key] = v
	}
	if len(p.Values) == 0 {
		return Patch{}, invalid("No valid fields to update")
	}
	return p, nil
}

func decodeColumn(key string, kind columnKind, raw json.RawMessage) (any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	switch kind {
	case columnText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, invalid(key + " must be a string")
		}
		if len(s) > maxTextLen {
			return nil, invalid(key + " is too long")
		}
		return s, nil
	case columnBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, invalid(key + " must be a boolean")
		}
		return b, nil
	case columnStars:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil || n < 1 || n > 5 {
			return nil, invalid(key + " must be an integer between 1 and 5")
		}
		return n, nil
	}
	return nil, invalid(key + " is invalid")
}
