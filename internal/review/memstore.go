package review

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and database-less runs.
type MemoryStore struct {
	mu      sync.Mutex
	reviews map[string]*Review
	extra   map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reviews: map[string]*Review{}, extra: map[string]map[string]any{}}
}

func (m *MemoryStore) Create(_ context.Context, r *Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = uuid.NewString()
	r.CreatedAt = time.Now()
	c := *r
	m.reviews[r.ID] = &c
	m.extra[r.ID] = map[string]any{}
	return nil
}

func (m *MemoryStore) Update(_ context.Context, p Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reviews[p.ID]; !ok {
		return ErrNotFound
	}
	for k, v := range p.Values {
		m.extra[p.ID][k] = v
	}
	return nil
}

// Fields returns the patched columns of a review.
func (m *MemoryStore) Fields(id string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]any{}
	for k, v := range m.extra[id] {
		out[k] = v
	}
	return out
}

func (m *MemoryStore) Scores(_ context.Context) ([]Score, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Score, 0, len(m.reviews))
	for _, r := range m.reviews {
		out = append(out, Score{OverallStars: r.OverallStars, RecommendScore: r.RecommendScore, Segment: r.Segment})
	}
	return out, nil
}
