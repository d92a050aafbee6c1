package review

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"whitelotus/internal/api"
	"whitelotus/internal/notify"
)

const maxBody = 64 << 10

type Notifier interface {
	LowReview(ctx context.Context, r notify.LowReview) notify.Result
}

type Handlers struct {
	Store    Store
	Notifier Notifier
	Validate *validator.Validate
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	rv, err := req.Build(h.validator())
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := h.Store.Create(r.Context(), rv); err != nil {
		writeErr(w, err)
		return
	}

	if rv.Segment == SegmentLow && h.Notifier != nil {
		res := h.Notifier.LowReview(r.Context(), notify.LowReview{
			ID:              rv.ID,
			OverallStars:    rv.OverallStars,
			RecommendScore:  rv.RecommendScore,
			Locale:          rv.Locale,
			ImproveOneThing: deref(rv.ImproveOneThing),
		})
		notify.LogResult("review", res)
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"id": rv.ID, "segment": rv.Segment})
}

func (h Handlers) Patch(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}

	p, err := ParsePatch(body)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := h.Store.Update(r.Context(), p); err != nil {
		writeErr(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{"id": p.ID, "success": true})
}

// Summary is admin only; the router enforces it.
func (h Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	scores, err := h.Store.Scores(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, Summarize(scores))
}

func (h Handlers) validator() *validator.Validate {
	if h.Validate != nil {
		return h.Validate
	}
	return NewValidator()
}

func writeErr(w http.ResponseWriter, err error) {
	var ve ValidationError
	switch {
	case errors.As(err, &ve):
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", ve.Message)
	case errors.Is(err, ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "review not found")
	default:
		log.Printf("review: storage error: %v", err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
