package review

import (
	"context"
	"errors"
	"time"
)

// Review is a whitelotus_event_feedback row.
type Review struct {
	ID                        string    `json:"id"`
	Locale                    string    `json:"locale"`
	OverallStars              int       `json:"overall_stars"`
	RecommendScore            int       `json:"recommend_score"`
	BookingCommunicationStars *int      `json:"booking_communication_stars"`
	StaffServiceStars         *int      `json:"staff_service_stars"`
	SpaceCleanlinessStars     *int      `json:"space_cleanliness_stars"`
	ImproveOneThing           *string   `json:"improve_one_thing"`
	Segment                   Segment   `json:"segment"`
	CreatedAt                 time.Time `json:"created_at"`
}

// Score is the part of a review the summary needs.
type Score struct {
	OverallStars   int
	RecommendScore int
	Segment        Segment
}

var ErrNotFound = errors.New("review not found")

// ValidationError is returned for bad request bodies; Message is safe to show.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return ValidationError{Message: msg} }

type Store interface {
	// Create sets r.ID and r.CreatedAt.
	Create(ctx context.Context, r *Review) error
	Update(ctx context.Context, p Patch) error
	Scores(ctx context.Context) ([]Score, error)
}
