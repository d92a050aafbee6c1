package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"whitelotus/internal/approval"
	"whitelotus/internal/bookingdata"
	"whitelotus/internal/events"
)

// MemoryStore keeps bookings in process. Used by tests and local runs
// without a database.
type MemoryStore struct {
	mu       sync.Mutex
	bookings map[string]*Booking
	events   map[string][]events.Event
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bookings: map[string]*Booking{},
		events:   map[string][]events.Event{},
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, s Seed) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data := s.Data
	if data == nil {
		data = bookingdata.NewDocument()
	}
	now := m.now()
	b := &Booking{
		ID:           uuid.NewString(),
		ReferenceID:  s.ReferenceID,
		ContactEmail: s.ContactEmail,
		ContactName:  s.ContactName,
		Data:         data.Clone(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if prev, ok := m.bookings[s.ReferenceID]; ok {
		b.ID, b.CreatedAt, b.Data = prev.ID, prev.CreatedAt, prev.Data
	}
	m.bookings[s.ReferenceID] = b
	return b.clone(), nil
}

func (m *MemoryStore) GetByReference(_ context.Context, ref string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[ref]
	if !ok {
		return nil, ErrNotFound
	}
	return b.clone(), nil
}

func (m *MemoryStore) Mutate(_ context.Context, ref string, fn MutateFunc) (*Booking, approval.Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.bookings[ref]
	if !ok {
		return nil, approval.Transition{}, ErrNotFound
	}
	work := cur.clone()
	tr, err := fn(work)
	if err != nil {
		return nil, approval.Transition{}, err
	}

	now := m.now()
	work.UpdatedAt = now
	m.bookings[ref] = work

	fe := fieldEvent(work.ID, tr, now)
	m.events[ref] = append(m.events[ref], events.Event{
		ID:         uuid.NewString(),
		Field:      fe.Field,
		BaseField:  fe.BaseField,
		Action:     fe.Action,
		ActorRole:  fe.ActorRole,
		ActorEmail: fe.ActorEmail,
		FromStatus: fe.FromStatus,
		ToStatus:   fe.ToStatus,
		OccurredAt: now.UTC().Format(time.RFC3339Nano),
		Data:       fe.Data,
	})
	return work.clone(), tr, nil
}

func (m *MemoryStore) Events(_ context.Context, ref string) ([]events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[ref]; !ok {
		return nil, ErrNotFound
	}
	out := make([]events.Event, len(m.events[ref]))
	copy(out, m.events[ref])
	return out, nil
}

func (m *MemoryStore) ListWithPending(_ context.Context) ([]*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Booking
	for _, b := range m.bookings {
		if len(b.Data.PendingFields()) > 0 {
			out = append(out, b.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}
