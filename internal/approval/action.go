package approval

import (
	"bytes"
	"encoding/json"
	"strings"

	"whitelotus/internal/bookingdata"
)

// Action is what a PATCH asks for. It is one of Edit, Approve or Reject and is
// only ever built by ParseAction.
type Action interface {
	Name() string
	isAction()
}

type Edit struct {
	Value any
}

// Approve accepts the pending value at the field. Value is only used when
// nothing is pending there.
type Approve struct {
	Value    any
	HasValue bool
}

type Reject struct{}

func (Edit) Name() string    { return "edit" }
func (Approve) Name() string { return "approve" }
func (Reject) Name() string  { return "reject" }

func (Edit) isAction()    {}
func (Approve) isAction() {}
func (Reject) isAction()  {}

// FieldRequest is the body of PATCH /api/wl/booking/{bookingref}/field.
// Flags stay raw so that both true and "true" can be accepted.
type FieldRequest struct {
	Field          string          `json:"field"`
	Value          json.RawMessage `json:"value,omitempty"`
	NotifyCustomer json.RawMessage `json:"notifyCustomer,omitempty"`
	Approve        json.RawMessage `json:"approve,omitempty"`
	Reject         json.RawMessage `json:"reject,omitempty"`
}

type Command struct {
	Field          string
	Action         Action
	NotifyCustomer bool
}

// ParseAction turns a decoded request into a Command. It is the only place
// that knows some callers serialize booleans as the string "true".
func ParseAction(req FieldRequest) (Command, error) {
	field := strings.TrimSpace(req.Field)
	if field == "" {
		return Command{}, invalid("field is required")
	}
	if err := bookingdata.ValidatePath(field); err != nil {
		return Command{}, invalid(err.Error())
	}

	approve, err := flag(req.Approve, "approve")
	if err != nil {
		return Command{}, err
	}
	reject, err := flag(req.Reject, "reject")
	if err != nil {
		return Command{}, err
	}
	notify, err := flag(req.NotifyCustomer, "notifyCustomer")
	if err != nil {
		return Command{}, err
	}
	if approve && reject {
		return Command{}, invalid("approve and reject cannot both be set")
	}

	value, hasValue, err := decodeValue(req.Value)
	if err != nil {
		return Command{}, err
	}

	cmd := Command{Field: field, NotifyCustomer: notify}
	switch {
	case approve:
		cmd.Action = Approve{Value: value, HasValue: hasValue}
	case reject:
		cmd.Action = Reject{}
	case !hasValue:
		return Command{}, invalid("value is required")
	default:
		cmd.Action = Edit{Value: value}
	}
	return cmd, nil
}

// flag accepts absent, null, true, false, "true" and "false".
func flag(raw json.RawMessage, name string) (bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, invalid(name + " must be a boolean")
	}
	switch t := v.(type) {
	case nil:
		return false, nil
	case bool:
		return t, nil
	case string:
		switch t {
		case "true":
			return true, nil
		case "false", "":
			return false, nil
		}
	}
	return false, invalid(name + " must be a boolean")
}

// decodeValue distinguishes an absent value from an explicit null; null is a
// value.
func decodeValue(raw json.RawMessage) (any, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false, nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, invalid("value is not valid json")
	}
	return v, true, nil
}
