package events

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Event struct {
	ID         string `json:"id"`
	Field      string `json:"field"`
	BaseField  string `json:"baseField"`
	Action     string `json:"action"`
	ActorRole  string `json:"actorRole"`
	ActorEmail string `json:"actorEmail,omitempty"`
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
	OccurredAt string `json:"occurredAt"`
	Data       any    `json:"data,omitempty"`
}

func ListByReference(ctx context.Context, db *pgxpool.Pool, referenceID string) ([]Event, error) {
	const q = `
SELECT e.id, e.field, e.base_field, e.action, e.actor_role, COALESCE(e.actor_email, ''),
       e.from_status, e.to_status, e.occurred_at::text, COALESCE(e.data, '{}'::jsonb)
FROM booking_field_events e
JOIN whitelotus_bookings b ON b.id = e.booking_id
WHERE b.reference_id = $1
ORDER BY e.occurred_at ASC, e.created_at ASC
`
	rows, err := db.Query(ctx, q, referenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Field, &e.BaseField, &e.Action, &e.ActorRole, &e.ActorEmail,
			&e.FromStatus, &e.ToStatus, &e.OccurredAt, &e.Data); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
