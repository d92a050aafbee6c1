package bookingdata

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Kind int

const (
	KindAny Kind = iota
	KindText
	KindNumber
	KindBool
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	default:
		return "any"
	}
}

var ErrUnknownField = errors.New("unknown booking field")

// Schema is the closed set of top-level booking_data fields and the kind of
// value each accepts.
type Schema map[string]Kind

// DefaultSchema lists the fields the White Lotus booking form edits.
var DefaultSchema = Schema{
	"eventType":       KindText,
	"eventDate":       KindText,
	"startTime":       KindText,
	"endTime":         KindText,
	"guestCount":      KindNumber,
	"roomSetup":       KindText,
	"foodMenu":        KindObject,
	"drinks":          KindObject,
	"foodAllergies":   KindText,
	"cakeService":     KindBool,
	"techEquipment":   KindList,
	"decorations":     KindText,
	"specialRequests": KindText,
	"companyName":     KindText,
	"contactPhone":    KindText,
	"invoiceDetails":  KindObject,
	"notes":           KindText,
}

func (s Schema) Known(base string) bool {
	_, ok := s[base]
	return ok
}

// CheckPath reports ErrUnknownField when the base field is not in the schema.
func (s Schema) CheckPath(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if !s.Known(BaseField(path)) {
		return fmt.Errorf("%w: %s", ErrUnknownField, BaseField(path))
	}
	return nil
}

// CheckValue validates value against the base field's kind. Only top-level
// writes are kind-checked; nested leaves accept any JSON value. nil and the
// empty string are accepted for every kind since both clear a field.
func (s Schema) CheckValue(path string, value any) error {
	if err := s.CheckPath(path); err != nil {
		return err
	}
	if BaseField(path) != path || value == nil {
		return nil
	}
	if str, ok := value.(string); ok && str == "" {
		return nil
	}
	kind := s[path]
	if !matches(kind, value) {
		return fmt.Errorf("field %s expects %s", path, kind)
	}
	return nil
}

func matches(kind Kind, v any) bool {
	switch kind {
	case KindText:
		_, ok := v.(string)
		return ok
	case KindNumber:
		switch v.(type) {
		case float64, json.Number, int, int64:
			return true
		}
		return false
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindObject:
		_, ok := v.(map[string]any)
		return ok
	case KindList:
		_, ok := v.([]any)
		return ok
	default:
		return true
	}
}
