package approval

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whitelotus/internal/bookingdata"
)

var (
	admin    = Actor{Role: RoleAdmin, Email: "events@whitelotus.is"}
	customer = Actor{Role: RoleCustomer, Email: "gudrun@example.com"}
)

func TestAuthorize(t *testing.T) {
	a, err := Authorize(nil, "gudrun@example.com")
	require.NoError(t, err)
	assert.Equal(t, Actor{Role: RoleCustomer}, a)

	a, err = Authorize(&Identity{Email: " Gudrun@Example.com "}, "gudrun@example.com")
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, a.Role)

	a, err = Authorize(&Identity{Email: "staff@whitelotus.is", Admin: true}, "gudrun@example.com")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, a.Role)

	_, err = Authorize(&Identity{Email: "someone@else.com"}, "gudrun@example.com")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestApply_CustomerEditIsPendingAtAnyDepth(t *testing.T) {
	m := NewMachine()
	for _, field := range []string{"foodAllergies", "foodMenu.day1", "foodMenu.day1.starter"} {
		doc := bookingdata.NewDocument()
		tr, err := m.Apply(doc, customer, Command{Field: field, Action: Edit{Value: "x"}})
		require.NoError(t, err, field)

		base := bookingdata.BaseField(field)
		assert.Equal(t, KindCustomerEdit, tr.Kind)
		assert.Equal(t, bookingdata.StatusPending, doc.Status(base))
		pending, approved := doc.Status(base).Flags()
		assert.True(t, pending)
		assert.False(t, approved)
		if field != base {
			assert.Equal(t, bookingdata.StatusUntouched, doc.Status(field), "flags live on the base field only")
		}
	}
}

func TestApply_AdminDirectEditIsApproved(t *testing.T) {
	doc := bookingdata.NewDocument()
	tr, err := NewMachine().Apply(doc, admin, Command{Field: "guestCount", Action: Edit{Value: float64(60)}, NotifyCustomer: true})
	require.NoError(t, err)

	assert.Equal(t, KindAdminEdit, tr.Kind)
	assert.True(t, tr.NotifyCustomer)
	assert.Equal(t, bookingdata.StatusApproved, doc.Status("guestCount"))
	v, _ := doc.Get("guestCount")
	assert.Equal(t, float64(60), v)
}

func TestApply_ApproveKeepsPendingValue(t *testing.T) {
	m := NewMachine()
	doc := bookingdata.NewDocument()
	_, err := m.Apply(doc, customer, Command{Field: "foodAllergies", Action: Edit{Value: "nuts"}})
	require.NoError(t, err)

	tr, err := m.Apply(doc, admin, Command{Field: "foodAllergies", Action: Approve{Value: "shellfish", HasValue: true}})
	require.NoError(t, err)

	assert.Equal(t, bookingdata.StatusPending, tr.From)
	assert.Equal(t, bookingdata.StatusApproved, tr.To)
	v, _ := doc.Get("foodAllergies")
	assert.Equal(t, "nuts", v, "pending value wins over supplied value")
}

func TestApply_ApproveFallsBackToSuppliedValue(t *testing.T) {
	doc := bookingdata.NewDocument()
	tr, err := NewMachine().Apply(doc, admin, Command{Field: "notes", Action: Approve{Value: "late arrival", HasValue: true}})
	require.NoError(t, err)

	assert.True(t, tr.HasValue)
	v, _ := doc.Get("notes")
	assert.Equal(t, "late arrival", v)
}

func TestApply_ApproveWithNothingStillFlipsFlags(t *testing.T) {
	doc := bookingdata.NewDocument()
	tr, err := NewMachine().Apply(doc, admin, Command{Field: "notes", Action: Approve{}})
	require.NoError(t, err)

	assert.False(t, tr.HasValue)
	_, ok := doc.Get("notes")
	assert.False(t, ok)
	assert.Equal(t, bookingdata.StatusApproved, doc.Status("notes"))
}

func TestApply_RejectClearsAnyValueType(t *testing.T) {
	prior := []any{float64(12), map[string]any{"a": "b"}, []any{"x", "y"}, "text"}
	for _, p := range prior {
		doc := bookingdata.NewDocument()
		doc.Set("foodMenu.day1", p)
		doc.SetStatus("foodMenu", bookingdata.StatusPending)

		_, err := NewMachine().Apply(doc, admin, Command{Field: "foodMenu.day1", Action: Reject{}})
		require.NoError(t, err)

		v, _ := doc.Get("foodMenu.day1")
		assert.Equal(t, "", v)
		assert.Equal(t, bookingdata.StatusRejected, doc.Status("foodMenu"))
		pending, approved := doc.Status("foodMenu").Flags()
		assert.False(t, pending)
		assert.False(t, approved)
	}
}

func TestApply_SiblingLeavesShareBaseStatus(t *testing.T) {
	m := NewMachine()
	doc := bookingdata.NewDocument()

	_, err := m.Apply(doc, customer, Command{Field: "foodMenu.day1", Action: Edit{Value: "lamb"}})
	require.NoError(t, err)
	_, err = m.Apply(doc, admin, Command{Field: "foodMenu.day1", Action: Approve{}})
	require.NoError(t, err)
	require.Equal(t, bookingdata.StatusApproved, doc.Status("foodMenu"))

	_, err = m.Apply(doc, customer, Command{Field: "foodMenu.day2", Action: Edit{Value: "cod"}})
	require.NoError(t, err)

	assert.Equal(t, bookingdata.StatusPending, doc.Status("foodMenu"), "a new customer edit re-opens the shared base field")
	v1, _ := doc.Get("foodMenu.day1")
	v2, _ := doc.Get("foodMenu.day2")
	assert.Equal(t, "lamb", v1)
	assert.Equal(t, "cod", v2)
}

func TestApply_CustomerCannotApproveOrReject(t *testing.T) {
	m := NewMachine()
	for _, a := range []Action{Approve{}, Reject{}} {
		doc := bookingdata.NewDocument()
		_, err := m.Apply(doc, customer, Command{Field: "notes", Action: a})
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Empty(t, doc.Statuses())
	}
}

func TestApply_ValidationLeavesDocumentUntouched(t *testing.T) {
	m := NewMachine()
	doc := bookingdata.NewDocument()

	_, err := m.Apply(doc, customer, Command{Field: "totallyUnknown", Action: Edit{Value: "x"}})
	var ve ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "UNKNOWN_FIELD", ve.Code)

	_, err = m.Apply(doc, admin, Command{Field: "guestCount", Action: Edit{Value: "many"}})
	require.True(t, errors.As(err, &ve))

	assert.Empty(t, doc.Statuses())
	_, ok := doc.Get("guestCount")
	assert.False(t, ok)
}
