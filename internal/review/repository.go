package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, rv *Review) error {
	const q = `
INSERT INTO whitelotus_event_feedback (
  locale, overall_stars, recommend_score,
  booking_communication_stars, staff_service_stars, space_cleanliness_stars,
  improve_one_thing, segment
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at
`
	return r.db.QueryRow(ctx, q,
		rv.Locale, rv.OverallStars, rv.RecommendScore,
		rv.BookingCommunicationStars, rv.StaffServiceStars, rv.SpaceCleanlinessStars,
		rv.ImproveOneThing, string(rv.Segment),
	).Scan(&rv.ID, &rv.CreatedAt)
}

// Update writes the patched columns. Column names come from the allow-list
// in patch.go only.
func (r *Repository) Update(ctx context.Context, p Patch) error {
	cols := p.Columns()
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	args = append(args, p.ID)
	for i, c := range cols {
		if _, ok := patchable[c]; !ok {
			return fmt.Errorf("review: column %q is not patchable", c)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", c, i+2))
		args = append(args, p.Values[c])
	}
	sets = append(sets, "updated_at = NOW()")

	q := `UPDATE whitelotus_event_feedback SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Scores(ctx context.Context) ([]Score, error) {
	const q = `SELECT overall_stars, recommend_score, segment FROM whitelotus_event_feedback`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Score
	for rows.Next() {
		var s Score
		if err := rows.Scan(&s.OverallStars, &s.RecommendScore, &s.Segment); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
