package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whitelotus/internal/booking"
	"whitelotus/internal/notify"
	"whitelotus/internal/review"
	"whitelotus/pkg/config"
	"whitelotus/pkg/mailer"
	"whitelotus/pkg/session"
)

const jwtSecret = "router-test-secret"

type outbox struct {
	mu   sync.Mutex
	sent []mailer.Email
}

func (o *outbox) Send(_ context.Context, e mailer.Email) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, e)
	return nil
}

type server struct {
	h        http.Handler
	bookings *booking.MemoryStore
	reviews  *review.MemoryStore
	mail     *outbox
}

func newServer(t *testing.T) server {
	t.Helper()
	cfg := config.Config{
		Auth:           config.AuthConfig{JWTSecret: jwtSecret},
		RateLimit:      config.RateLimitConfig{Enabled: true, Capacity: 1},
		AllowedOrigins: []string{"https://whitelotus.is"},
	}
	s := server{bookings: booking.NewMemoryStore(), reviews: review.NewMemoryStore(), mail: &outbox{}}
	_, err := s.bookings.Create(context.Background(), booking.Seed{
		ReferenceID: "WL-1042", ContactEmail: "gudrun@example.com", ContactName: "Gudrun",
	})
	require.NoError(t, err)

	s.h = NewRouter(Dependencies{
		Cfg:      cfg,
		Bookings: s.bookings,
		Reviews:  s.reviews,
		Notifier: notify.Dispatcher{Mailer: s.mail, From: "bookings@whitelotus.is", AdminInbox: "events@whitelotus.is", SiteURL: "https://whitelotus.is"},
	})
	return s
}

func bearer(t *testing.T, email, role string) string {
	t.Helper()
	tok, err := session.Issue(session.Identity{Email: email, Role: role}, jwtSecret, "", time.Now(), time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (s server) call(t *testing.T, method, path, authz, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func TestReviewScenarios(t *testing.T) {
	s := newServer(t)

	code, out := s.call(t, http.MethodPost, "/api/wl/review", "", `{"overall_stars":5,"recommend_score":10}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "high", out["segment"])
	id, _ := out["id"].(string)
	require.NotEmpty(t, id)

	code, out = s.call(t, http.MethodPost, "/api/wl/review", "", `{"overall_stars":2,"recommend_score":9}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "low", out["segment"])
	require.Len(t, s.mail.sent, 1, "low review alerts the admin inbox")
	assert.Equal(t, "events@whitelotus.is", s.mail.sent[0].To)

	code, out = s.call(t, http.MethodPatch, "/api/wl/review", "", `{"id":"`+id+`","totallyUnknownKey":"x"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No valid fields to update", out["error"].(map[string]any)["message"])

	code, out = s.call(t, http.MethodPatch, "/api/wl/review", "", `{"id":"`+id+`","what_went_well":"Everything"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
}

func TestBookingScenarios(t *testing.T) {
	s := newServer(t)

	code, out := s.call(t, http.MethodPatch, "/api/wl/booking/WL-1042/field", "", `{"field":"foodAllergies","value":"nuts"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["success"])
	data := out["booking"].(map[string]any)["booking_data"].(map[string]any)
	assert.Equal(t, "nuts", data["foodAllergies"])
	assert.Equal(t, true, data["foodAllergies_pending_approval"])
	assert.Equal(t, false, data["foodAllergies_approved"])

	require.Len(t, s.mail.sent, 1)
	assert.Equal(t, "events@whitelotus.is", s.mail.sent[0].To)
	assert.Equal(t, "gudrun@example.com", s.mail.sent[0].ReplyTo)

	admin := bearer(t, "staff@whitelotus.is", "admin")
	code, out = s.call(t, http.MethodPatch, "/api/wl/booking/WL-1042/field", admin, `{"field":"foodAllergies","approve":true}`)
	require.Equal(t, http.StatusOK, code)
	data = out["booking"].(map[string]any)["booking_data"].(map[string]any)
	assert.Equal(t, "nuts", data["foodAllergies"])
	assert.Equal(t, false, data["foodAllergies_pending_approval"])
	assert.Equal(t, true, data["foodAllergies_approved"])
	assert.Equal(t, "approved", data["foodAllergies_status"])

	require.Len(t, s.mail.sent, 2)
	assert.Equal(t, "gudrun@example.com", s.mail.sent[1].To)

	code, out = s.call(t, http.MethodGet, "/api/wl/booking/WL-1042/events", admin, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["items"], 2)
}

func TestBookingErrors(t *testing.T) {
	s := newServer(t)

	cases := []struct {
		name, path, authz, body string
		status                  int
		code                    string
	}{
		{"missing field", "/api/wl/booking/WL-1042/field", "", `{"value":"x"}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"missing value", "/api/wl/booking/WL-1042/field", "", `{"field":"notes"}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"unknown field", "/api/wl/booking/WL-1042/field", "", `{"field":"totallyUnknown","value":"x"}`, http.StatusBadRequest, "UNKNOWN_FIELD"},
		{"customer approve", "/api/wl/booking/WL-1042/field", "", `{"field":"notes","approve":"true"}`, http.StatusForbidden, "FORBIDDEN"},
		{"other customer", "/api/wl/booking/WL-1042/field", bearer(t, "mallory@example.com", ""), `{"field":"notes","value":"x"}`, http.StatusForbidden, "FORBIDDEN"},
		{"bad token", "/api/wl/booking/WL-1042/field", "Bearer nope", `{"field":"notes","value":"x"}`, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"unknown booking", "/api/wl/booking/WL-9999/field", "", `{"field":"notes","value":"x"}`, http.StatusNotFound, "NOT_FOUND"},
		{"events need admin", "/api/wl/booking/WL-1042/events", "", "", http.StatusUnauthorized, "UNAUTHORIZED"},
	}
	for _, c := range cases {
		method := http.MethodPatch
		if c.body == "" {
			method = http.MethodGet
		}
		code, out := s.call(t, method, c.path, c.authz, c.body)
		assert.Equal(t, c.status, code, c.name)
		e, _ := out["error"].(map[string]any)
		assert.Equal(t, c.code, e["code"], c.name)
	}

	b, err := s.bookings.GetByReference(context.Background(), "WL-1042")
	require.NoError(t, err)
	assert.Empty(t, b.Data.Statuses(), "rejected requests leave the booking untouched")
	assert.Empty(t, s.mail.sent)
}

func TestGetBooking(t *testing.T) {
	s := newServer(t)
	_, _ = s.call(t, http.MethodPatch, "/api/wl/booking/WL-1042/field", "", `{"field":"foodMenu.day1","value":"lamb"}`)

	code, out := s.call(t, http.MethodGet, "/api/wl/booking/WL-1042", bearer(t, "Gudrun@Example.com", ""), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "customer", out["role"])
	assert.Equal(t, []any{"foodMenu"}, out["pendingFields"])
	assert.Equal(t, "pending", out["fieldStatus"].(map[string]any)["foodMenu"])
}

func TestReviewSummaryIsAdminOnly(t *testing.T) {
	s := newServer(t)
	require.NoError(t, s.reviews.Create(context.Background(), &review.Review{OverallStars: 5, RecommendScore: 10, Segment: review.SegmentHigh}))

	code, _ := s.call(t, http.MethodGet, "/api/wl/review/summary", bearer(t, "gudrun@example.com", ""), "")
	assert.Equal(t, http.StatusForbidden, code)

	code, out := s.call(t, http.MethodGet, "/api/wl/review/summary", bearer(t, "staff@whitelotus.is", "admin"), "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), out["count"])
	assert.Equal(t, "100", out["nps"])
}

func TestHealthz(t *testing.T) {
	s := newServer(t)
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
