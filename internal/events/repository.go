package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
)

// FieldEvent is one row of a booking's field history.
type FieldEvent struct {
	BookingID  string
	Field      string
	BaseField  string
	Action     string
	ActorRole  string
	ActorEmail string
	FromStatus string
	ToStatus   string
	OccurredAt time.Time
	Data       any
}

// Insert writes e inside the caller's transaction so the history commits or
// rolls back with the booking change.
func Insert(ctx context.Context, tx pgx.Tx, e FieldEvent) error {
	var s *string
	if e.Data != nil {
		b, _ := json.Marshal(e.Data)
		str := string(b)
		s = &str
	}
	var email *string
	if e.ActorEmail != "" {
		email = &e.ActorEmail
	}
	const q = `
INSERT INTO booking_field_events (booking_id, field, base_field, action, actor_role, actor_email, from_status, to_status, occurred_at, data)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CAST($10 AS jsonb))
`
	_, err := tx.Exec(ctx, q, e.BookingID, e.Field, e.BaseField, e.Action, e.ActorRole, email, e.FromStatus, e.ToStatus, e.OccurredAt, s)
	return err
}
