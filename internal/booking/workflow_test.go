package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whitelotus/internal/approval"
	"whitelotus/internal/bookingdata"
	"whitelotus/internal/notify"
	"whitelotus/internal/queue"
)

type fakeNotifier struct {
	mu    sync.Mutex
	calls []approval.Transition
	fail  bool
}

func (f *fakeNotifier) FieldChanged(_ context.Context, t approval.Transition, b notify.Booking) notify.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, t)
	kind, ok := notify.Select(t)
	if !ok {
		return notify.Result{}
	}
	if f.fail {
		return notify.Result{Kind: kind, To: b.ContactEmail, Err: errors.New("provider down")}
	}
	return notify.Result{Kind: kind, To: b.ContactEmail, Sent: true}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.BookingFieldChanged
	err    error
}

func (f *fakePublisher) PublishFieldChanged(_ context.Context, ev queue.BookingFieldChanged) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

const ref = "WL-1042"

func newWorkflow(t *testing.T) (Workflow, *MemoryStore, *fakeNotifier, *fakePublisher) {
	t.Helper()
	store := NewMemoryStore()
	_, err := store.Create(context.Background(), Seed{ReferenceID: ref, ContactEmail: "gudrun@example.com", ContactName: "Gudrun"})
	require.NoError(t, err)
	n, p := &fakeNotifier{}, &fakePublisher{}
	return Workflow{Store: store, Machine: approval.NewMachine(), Notifier: n, Publisher: p}, store, n, p
}

var adminID = &approval.Identity{Email: "events@whitelotus.is", Admin: true}

func TestUpdateField_CustomerEditThenAdminApprove(t *testing.T) {
	w, store, n, p := newWorkflow(t)
	ctx := context.Background()

	out, err := w.UpdateField(ctx, ref, nil, approval.Command{Field: "foodAllergies", Action: approval.Edit{Value: "nuts"}})
	require.NoError(t, err)
	assert.Equal(t, notify.KindApprovalNeeded, out.Notification.Kind)
	assert.Equal(t, bookingdata.StatusPending, out.Booking.Data.Status("foodAllergies"))

	out, err = w.UpdateField(ctx, ref, adminID, approval.Command{Field: "foodAllergies", Action: approval.Approve{}})
	require.NoError(t, err)
	v, _ := out.Booking.Data.Get("foodAllergies")
	assert.Equal(t, "nuts", v)
	assert.Equal(t, bookingdata.StatusApproved, out.Booking.Data.Status("foodAllergies"))

	assert.Len(t, n.calls, 2)
	require.Len(t, p.events, 2)
	assert.Equal(t, "approved", p.events[1].Action)

	evs, err := store.Events(ctx, ref)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, "customer_edit", evs[0].Action)
	assert.Equal(t, "pending", evs[0].ToStatus)
	assert.Equal(t, "approved", evs[1].Action)
	assert.Equal(t, "pending", evs[1].FromStatus)
}

func TestUpdateField_ForeignCustomerIsForbiddenAndNothingChanges(t *testing.T) {
	w, store, n, p := newWorkflow(t)

	_, err := w.UpdateField(context.Background(), ref, &approval.Identity{Email: "mallory@example.com"},
		approval.Command{Field: "notes", Action: approval.Edit{Value: "x"}})
	assert.ErrorIs(t, err, approval.ErrForbidden)

	b, _ := store.GetByReference(context.Background(), ref)
	assert.Empty(t, b.Data.Statuses())
	assert.Empty(t, n.calls)
	assert.Empty(t, p.events)
	evs, _ := store.Events(context.Background(), ref)
	assert.Empty(t, evs)
}

func TestUpdateField_NotFound(t *testing.T) {
	w, _, _, _ := newWorkflow(t)
	_, err := w.UpdateField(context.Background(), "WL-0000", adminID, approval.Command{Field: "notes", Action: approval.Reject{}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateField_SideEffectFailuresDoNotFailTheUpdate(t *testing.T) {
	w, store, n, p := newWorkflow(t)
	n.fail = true
	p.err = errors.New("broker down")

	out, err := w.UpdateField(context.Background(), ref, adminID,
		approval.Command{Field: "guestCount", Action: approval.Edit{Value: float64(80)}, NotifyCustomer: true})
	require.NoError(t, err)
	assert.True(t, out.Notification.Failed())
	assert.Equal(t, notify.KindBookingUpdated, out.Notification.Kind)

	b, _ := store.GetByReference(context.Background(), ref)
	v, _ := b.Data.Get("guestCount")
	assert.Equal(t, float64(80), v)
}

func TestUpdateField_ConcurrentEditsToDifferentFieldsAreAllKept(t *testing.T) {
	w, store, _, _ := newWorkflow(t)
	fields := []string{"foodAllergies", "notes", "decorations", "specialRequests", "roomSetup", "eventType"}

	var wg sync.WaitGroup
	for i, f := range fields {
		wg.Add(1)
		go func(i int, f string) {
			defer wg.Done()
			_, err := w.UpdateField(context.Background(), ref, nil, approval.Command{Field: f, Action: approval.Edit{Value: fmt.Sprintf("v%d", i)}})
			assert.NoError(t, err)
		}(i, f)
	}
	wg.Wait()

	b, err := store.GetByReference(context.Background(), ref)
	require.NoError(t, err)
	for i, f := range fields {
		v, ok := b.Data.Get(f)
		require.True(t, ok, f)
		assert.Equal(t, fmt.Sprintf("v%d", i), v)
	}
	assert.Len(t, b.Data.PendingFields(), len(fields))
}

func TestGet_Authorizes(t *testing.T) {
	w, _, _, _ := newWorkflow(t)

	_, actor, err := w.Get(context.Background(), ref, &approval.Identity{Email: "GUDRUN@example.com"})
	require.NoError(t, err)
	assert.Equal(t, approval.RoleCustomer, actor.Role)

	_, _, err = w.Get(context.Background(), ref, &approval.Identity{Email: "mallory@example.com"})
	assert.ErrorIs(t, err, approval.ErrForbidden)
}

func TestMemoryStore_ListWithPending(t *testing.T) {
	w, store, _, _ := newWorkflow(t)
	ctx := context.Background()
	_, err := store.Create(ctx, Seed{ReferenceID: "WL-2000", ContactEmail: "a@example.com"})
	require.NoError(t, err)

	_, err = w.UpdateField(ctx, ref, nil, approval.Command{Field: "foodMenu.day1", Action: approval.Edit{Value: "cod"}})
	require.NoError(t, err)

	got, err := store.ListWithPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ref, got[0].ReferenceID)
	assert.Equal(t, []string{"foodMenu"}, got[0].Data.PendingFields())
}
