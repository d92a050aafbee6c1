package approval

import (
	"errors"
	"strings"

	"whitelotus/internal/bookingdata"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Identity is the authenticated caller, if any.
type Identity struct {
	Email string
	Admin bool
}

type Actor struct {
	Role  Role
	Email string // empty for anonymous link access
}

// Authorize resolves who is acting on a booking. A nil identity is anonymous
// link access and acts as the customer; a signed-in non-admin must own the
// booking's contact email.
func Authorize(id *Identity, contactEmail string) (Actor, error) {
	if id == nil {
		return Actor{Role: RoleCustomer}, nil
	}
	if id.Admin {
		return Actor{Role: RoleAdmin, Email: id.Email}, nil
	}
	if id.Email != "" && sameEmail(id.Email, contactEmail) {
		return Actor{Role: RoleCustomer, Email: id.Email}, nil
	}
	return Actor{}, ErrForbidden
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Kind names the transition that happened.
type Kind string

const (
	KindApproved     Kind = "approved"
	KindRejected     Kind = "rejected"
	KindAdminEdit    Kind = "admin_edit"
	KindCustomerEdit Kind = "customer_edit"
)

type Transition struct {
	Kind           Kind
	Actor          Actor
	Field          string
	BaseField      string
	From           bookingdata.Status
	To             bookingdata.Status
	Value          any  // value at Field after the transition
	HasValue       bool // false when approve found nothing to write
	NotifyCustomer bool
}

// Machine applies field commands to booking documents.
type Machine struct {
	Schema bookingdata.Schema
}

func NewMachine() Machine {
	return Machine{Schema: bookingdata.DefaultSchema}
}

// Apply mutates doc in place and returns the transition. On error doc is left
// untouched.
//
//	admin    approve  pending-or-supplied value kept, status approved
//	admin    reject   value cleared to "", status rejected
//	admin    edit     value written, status approved
//	customer edit     value written, status pending
func (m Machine) Apply(doc *bookingdata.Document, actor Actor, cmd Command) (Transition, error) {
	if err := m.Schema.CheckPath(cmd.Field); err != nil {
		return Transition{}, schemaError(err)
	}

	base := bookingdata.BaseField(cmd.Field)
	t := Transition{
		Actor:     actor,
		Field:     cmd.Field,
		BaseField: base,
		From:      doc.Status(base),
	}

	switch actor.Role {
	case RoleAdmin:
		t.NotifyCustomer = cmd.NotifyCustomer
		switch a := cmd.Action.(type) {
		case Approve:
			t.Kind = KindApproved
			if cur, ok := doc.Get(cmd.Field); ok {
				t.Value, t.HasValue = cur, true
			} else if a.HasValue {
				if err := m.Schema.CheckValue(cmd.Field, a.Value); err != nil {
					return Transition{}, schemaError(err)
				}
				t.Value, t.HasValue = a.Value, true
			}
			t.To = bookingdata.StatusApproved
		case Reject:
			t.Kind = KindRejected
			t.Value, t.HasValue = "", true
			t.To = bookingdata.StatusRejected
		case Edit:
			if err := m.Schema.CheckValue(cmd.Field, a.Value); err != nil {
				return Transition{}, schemaError(err)
			}
			t.Kind = KindAdminEdit
			t.Value, t.HasValue = a.Value, true
			t.To = bookingdata.StatusApproved
		default:
			return Transition{}, invalid("unsupported action")
		}

	case RoleCustomer:
		a, ok := cmd.Action.(Edit)
		if !ok {
			return Transition{}, ErrForbidden
		}
		if err := m.Schema.CheckValue(cmd.Field, a.Value); err != nil {
			return Transition{}, schemaError(err)
		}
		t.Kind = KindCustomerEdit
		t.Value, t.HasValue = a.Value, true
		t.To = bookingdata.StatusPending

	default:
		return Transition{}, ErrForbidden
	}

	if t.HasValue {
		doc.Set(cmd.Field, t.Value)
	}
	doc.SetStatus(base, t.To)
	return t, nil
}

func schemaError(err error) error {
	if errors.Is(err, bookingdata.ErrUnknownField) {
		return ValidationError{Code: "UNKNOWN_FIELD", Message: err.Error()}
	}
	return invalid(err.Error())
}
