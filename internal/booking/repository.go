package booking

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"whitelotus/internal/approval"
	"whitelotus/internal/bookingdata"
	"whitelotus/internal/events"
	"whitelotus/pkg/db"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const selectBooking = `
SELECT id, reference_id, contact_email, contact_name, booking_data, created_at, updated_at
FROM whitelotus_bookings
`

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b   Booking
		raw []byte
	)
	if err := row.Scan(&b.ID, &b.ReferenceID, &b.ContactEmail, &b.ContactName, &raw, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Data = bookingdata.NewDocument()
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, b.Data); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

func (r *Repository) GetByReference(ctx context.Context, ref string) (*Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, selectBooking+`WHERE reference_id = $1`, ref))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return b, storageErr("get", err)
}

func (r *Repository) Mutate(ctx context.Context, ref string, fn MutateFunc) (*Booking, approval.Transition, error) {
	var (
		out   *Booking
		tr    approval.Transition
		fnErr error
	)
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		b, err := scanBooking(tx.QueryRow(ctx, selectBooking+`WHERE reference_id = $1 FOR UPDATE`, ref))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return storageErr("load", err)
		}

		if tr, fnErr = fn(b); fnErr != nil {
			return fnErr
		}

		body, err := json.Marshal(b.Data)
		if err != nil {
			return storageErr("encode", err)
		}
		const q = `
UPDATE whitelotus_bookings
SET booking_data = CAST($2 AS jsonb), updated_at = NOW()
WHERE id = $1
RETURNING updated_at
`
		if err := tx.QueryRow(ctx, q, b.ID, string(body)).Scan(&b.UpdatedAt); err != nil {
			return storageErr("update", err)
		}
		if err := events.Insert(ctx, tx, fieldEvent(b.ID, tr, time.Now())); err != nil {
			return storageErr("record event", err)
		}
		out = b
		return nil
	})
	if fnErr != nil {
		return nil, approval.Transition{}, fnErr
	}
	if err != nil {
		return nil, approval.Transition{}, storageErr("commit", err)
	}
	return out, tr, nil
}

func (r *Repository) Events(ctx context.Context, ref string) ([]events.Event, error) {
	if _, err := r.GetByReference(ctx, ref); err != nil {
		return nil, err
	}
	evs, err := events.ListByReference(ctx, r.db, ref)
	return evs, storageErr("list events", err)
}

// ListWithPending returns bookings where at least one base field awaits
// approval.
func (r *Repository) ListWithPending(ctx context.Context) ([]*Booking, error) {
	const q = selectBooking + `
WHERE EXISTS (
  SELECT 1 FROM jsonb_each(booking_data) kv
  WHERE kv.key LIKE '%\_pending\_approval' AND kv.value = 'true'::jsonb
)
ORDER BY updated_at ASC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, storageErr("list pending", err)
	}
	defer rows.Close()

	var out []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, storageErr("list pending", err)
		}
		out = append(out, b)
	}
	return out, storageErr("list pending", rows.Err())
}

func (r *Repository) Create(ctx context.Context, s Seed) (*Booking, error) {
	data := s.Data
	if data == nil {
		data = bookingdata.NewDocument()
	}
	body, err := json.Marshal(data)
	if err != nil {
		return nil, storageErr("encode", err)
	}
	const q = `
INSERT INTO whitelotus_bookings (reference_id, contact_email, contact_name, booking_data)
VALUES ($1, $2, $3, CAST($4 AS jsonb))
ON CONFLICT (reference_id) DO UPDATE
  SET contact_email = EXCLUDED.contact_email,
      contact_name = EXCLUDED.contact_name,
      updated_at = NOW()
RETURNING id, reference_id, contact_email, contact_name, booking_data, created_at, updated_at
`
	b, err := scanBooking(r.db.QueryRow(ctx, q, s.ReferenceID, s.ContactEmail, s.ContactName, string(body)))
	return b, storageErr("create", err)
}

func fieldEvent(bookingID string, t approval.Transition, at time.Time) events.FieldEvent {
	data := map[string]any{"notifyCustomer": t.NotifyCustomer}
	if t.HasValue {
		data["value"] = t.Value
	}
	return events.FieldEvent{
		BookingID:  bookingID,
		Field:      t.Field,
		BaseField:  t.BaseField,
		Action:     string(t.Kind),
		ActorRole:  string(t.Actor.Role),
		ActorEmail: t.Actor.Email,
		FromStatus: string(t.From),
		ToStatus:   string(t.To),
		OccurredAt: at,
		Data:       data,
	}
}
