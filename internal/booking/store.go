package booking

import (
	"context"

	"whitelotus/internal/approval"
	"whitelotus/internal/events"
)

// MutateFunc changes b in place. Returning an error aborts the write and the
// error is passed back unchanged.
type MutateFunc func(b *Booking) (approval.Transition, error)

type Store interface {
	GetByReference(ctx context.Context, ref string) (*Booking, error)
	// Mutate loads the booking locked for update, runs fn and persists the
	// whole document together with a history row.
	Mutate(ctx context.Context, ref string, fn MutateFunc) (*Booking, approval.Transition, error)
	Events(ctx context.Context, ref string) ([]events.Event, error)
	ListWithPending(ctx context.Context) ([]*Booking, error)
	Create(ctx context.Context, s Seed) (*Booking, error)
}
