package booking

import (
	"context"
	"log"

	"whitelotus/internal/approval"
	"whitelotus/internal/notify"
	"whitelotus/internal/queue"
)

// Notifier is the part of notify.Dispatcher the workflow uses.
type Notifier interface {
	FieldChanged(ctx context.Context, t approval.Transition, b notify.Booking) notify.Result
}

// Publisher receives committed field changes.
type Publisher interface {
	PublishFieldChanged(ctx context.Context, ev queue.BookingFieldChanged) error
}

type Workflow struct {
	Store     Store
	Machine   approval.Machine
	Notifier  Notifier
	Publisher Publisher
}

// Outcome is the result of a successful field update.
type Outcome struct {
	Booking      *Booking
	Transition   approval.Transition
	Notification notify.Result
}

// UpdateField authorizes id against the booking, applies cmd under a row lock
// and persists the document. Notification and publishing happen after commit
// and never turn a committed update into an error.
func (w Workflow) UpdateField(ctx context.Context, ref string, id *approval.Identity, cmd approval.Command) (Outcome, error) {
	b, tr, err := w.Store.Mutate(ctx, ref, func(b *Booking) (approval.Transition, error) {
		actor, err := approval.Authorize(id, b.ContactEmail)
		if err != nil {
			return approval.Transition{}, err
		}
		return w.Machine.Apply(b.Data, actor, cmd)
	})
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Booking: b, Transition: tr}
	if tr.Kind == approval.KindApproved && !tr.HasValue {
		log.Printf("booking: approved with no value ref=%s field=%s", ref, tr.Field)
	}

	if w.Notifier != nil {
		out.Notification = w.Notifier.FieldChanged(ctx, tr, b.notifyRef())
		notify.LogResult("booking", out.Notification)
	}

	if w.Publisher != nil {
		if err := w.Publisher.PublishFieldChanged(ctx, queue.NewBookingFieldChanged(b.ID, b.ReferenceID, tr)); err != nil {
			log.Printf("booking: publish field change failed ref=%s field=%s err=%v", ref, tr.Field, err)
		}
	}
	return out, nil
}

// Get returns the booking if id may see it.
func (w Workflow) Get(ctx context.Context, ref string, id *approval.Identity) (*Booking, approval.Actor, error) {
	b, err := w.Store.GetByReference(ctx, ref)
	if err != nil {
		return nil, approval.Actor{}, err
	}
	actor, err := approval.Authorize(id, b.ContactEmail)
	if err != nil {
		return nil, approval.Actor{}, err
	}
	return b, actor, nil
}
