// Package queue publishes booking domain events to RabbitMQ.
package queue

import (
	"time"

	"github.com/google/uuid"

	"whitelotus/internal/approval"
)

const FieldChangedQueue = "booking.field_changed"

// BookingFieldChanged is published after a field transition commits.
type BookingFieldChanged struct {
	EventID     string    `json:"event_id"`
	BookingID   string    `json:"booking_id"`
	ReferenceID string    `json:"reference_id"`
	Field       string    `json:"field"`
	BaseField   string    `json:"base_field"`
	Action      string    `json:"action"`
	ActorRole   string    `json:"actor_role"`
	FromStatus  string    `json:"from_status"`
	ToStatus    string    `json:"to_status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewBookingFieldChanged(bookingID, ref string, t approval.Transition) BookingFieldChanged {
	return BookingFieldChanged{
		EventID:     uuid.NewString(),
		BookingID:   bookingID,
		ReferenceID: ref,
		Field:       t.Field,
		BaseField:   t.BaseField,
		Action:      string(t.Kind),
		ActorRole:   string(t.Actor.Role),
		FromStatus:  string(t.From),
		ToStatus:    string(t.To),
		OccurredAt:  time.Now().UTC(),
	}
}
