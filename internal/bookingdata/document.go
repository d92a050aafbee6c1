package bookingdata

import (
	"encoding/json"
	"sort"
	"strings"
)

type Status string

const (
	StatusUntouched Status = "untouched"
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusUntouched, StatusPending, StatusApproved, StatusRejected:
		return Status(s), true
	default:
		return "", false
	}
}

// Flags is the legacy two-boolean view of a status. Rejected and Untouched
// both map to (false, false).
func (s Status) Flags() (pending, approved bool) {
	switch s {
	case StatusPending:
		return true, false
	case StatusApproved:
		return false, true
	default:
		return false, false
	}
}

// Legacy per-field flag key suffixes stored next to the values in booking_data.
const (
	suffixPending  = "_pending_approval"
	suffixApproved = "_approved"
	suffixStatus   = "_status"
)

// Document is the typed form of a booking's booking_data column: the value
// tree plus one approval status per base field.
type Document struct {
	values map[string]any
	status map[string]Status
}

func NewDocument() *Document {
	return &Document{values: map[string]any{}, status: map[string]Status{}}
}

func (d *Document) Get(path string) (any, bool) {
	return Get(d.values, path)
}

func (d *Document) Set(path string, value any) {
	Set(d.values, path, value)
}

// Status returns the approval status of a base field; fields never touched by
// the workflow are StatusUntouched.
func (d *Document) Status(base string) Status {
	if s, ok := d.status[base]; ok {
		return s
	}
	return StatusUntouched
}

func (d *Document) SetStatus(base string, s Status) {
	d.status[base] = s
}

// Statuses returns a copy of every tracked base field status.
func (d *Document) Statuses() map[string]Status {
	out := make(map[string]Status, len(d.status))
	for k, v := range d.status {
		out[k] = v
	}
	return out
}

// PendingFields lists base fields awaiting admin approval, sorted.
func (d *Document) PendingFields() []string {
	var out []string
	for k, s := range d.status {
		if s == StatusPending {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (d *Document) Clone() *Document {
	c := NewDocument()
	for k, v := range d.values {
		c.values[k] = cloneValue(v)
	}
	for k, v := range d.status {
		c.status[k] = v
	}
	return c
}

// MarshalJSON writes the legacy flat shape: values at the top level and, for
// each tracked base field, <base>_pending_approval, <base>_approved and
// <base>_status.
func (d *Document) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(d.values)+3*len(d.status))
	for k, v := range d.values {
		flat[k] = v
	}
	for base, s := range d.status {
		pending, approved := s.Flags()
		flat[base+suffixPending] = pending
		flat[base+suffixApproved] = approved
		flat[base+suffixStatus] = string(s)
	}
	return json.Marshal(flat)
}

// UnmarshalJSON reads the legacy flat shape. Rows written before <base>_status
// existed derive the status from the two flags; (false, false) is read as
// untouched since a rejection cannot be told apart in that shape.
func (d *Document) UnmarshalJSON(b []byte) error {
	var flat map[string]any
	if err := json.Unmarshal(b, &flat); err != nil {
		return err
	}
	*d = *NewDocument()

	type flags struct {
		pending, approved, seen bool
		explicit            Status
	}
	byBase := map[string]*flags{}
	entry := func(base string) *flags {
		f, ok := byBase[base]
		if !ok {
			f = &flags{}
			byBase[base] = f
		}
		return f
	}

	for k, v := range flat {
		switch {
		case strings.HasSuffix(k, suffixPending) && isBool(v):
			f := entry(strings.TrimSuffix(k, suffixPending))
			f.pending, f.seen = v.(bool), true
		case strings.HasSuffix(k, suffixApproved) && isBool(v):
			f := entry(strings.TrimSuffix(k, suffixApproved))
			f.approved, f.seen = v.(bool), true
		case strings.HasSuffix(k, suffixStatus) && isStatus(v):
			f := entry(strings.TrimSuffix(k, suffixStatus))
			f.explicit, _ = ParseStatus(v.(string))
			f.seen = true
		default:
			d.values[k] = v
		}
	}

	for base, f := range byBase {
		switch {
		case f.explicit != "":
			d.status[base] = f.explicit
		case f.pending:
			d.status[base] = StatusPending
		case f.approved:
			d.status[base] = StatusApproved
		case f.seen:
			d.status[base] = StatusUntouched
		}
	}
	return nil
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isStatus(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, ok = ParseStatus(s)
	return ok
}
