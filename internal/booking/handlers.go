package booking

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"whitelotus/internal/api"
	"whitelotus/internal/approval"
)

const maxBody = 1 << 20

type Handlers struct {
	Workflow Workflow
}

func (h Handlers) PatchField(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(chi.URLParam(r, "bookingref"))
	if ref == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing booking reference")
		return
	}

	var req approval.FieldRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	cmd, err := approval.ParseAction(req)
	if err != nil {
		writeErr(w, ref, err)
		return
	}

	out, err := h.Workflow.UpdateField(r.Context(), ref, identity(r), cmd)
	if err != nil {
		writeErr(w, ref, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"booking": out.Booking,
	})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(chi.URLParam(r, "bookingref"))
	b, actor, err := h.Workflow.Get(r.Context(), ref, identity(r))
	if err != nil {
		writeErr(w, ref, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"booking":       b,
		"role":          actor.Role,
		"fieldStatus":   b.Data.Statuses(),
		"pendingFields": nonNil(b.Data.PendingFields()),
	})
}

// Events lists the field history. Admin only; the router enforces it.
func (h Handlers) Events(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(chi.URLParam(r, "bookingref"))
	evs, err := h.Workflow.Store.Events(r.Context(), ref)
	if err != nil {
		writeErr(w, ref, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": evs})
}

func identity(r *http.Request) *approval.Identity {
	s := api.SessionFromContext(r.Context())
	if s == nil {
		return nil
	}
	return &approval.Identity{Email: s.Email, Admin: s.IsAdmin()}
}

func writeErr(w http.ResponseWriter, ref string, err error) {
	var ve approval.ValidationError
	switch {
	case errors.As(err, &ve):
		api.WriteError(w, http.StatusBadRequest, ve.Code, ve.Message)
	case errors.Is(err, approval.ErrForbidden):
		api.WriteError(w, http.StatusForbidden, "FORBIDDEN", "not allowed to change this booking")
	case errors.Is(err, ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
	default:
		log.Printf("booking: request failed ref=%s err=%v", ref, err)
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
