package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"whitelotus/internal/api"
	"whitelotus/internal/approval"
	"whitelotus/internal/booking"
	"whitelotus/internal/review"
	"whitelotus/pkg/config"
)

type Dependencies struct {
	Cfg       config.Config
	Bookings  booking.Store
	Reviews   review.Store
	Redis     *redis.Client // nil disables rate limiting
	Notifier  Notifier
	Publisher booking.Publisher
}

// Notifier covers every message the HTTP surface can trigger.
type Notifier interface {
	booking.Notifier
	review.Notifier
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	bookingHandlers := booking.Handlers{Workflow: booking.Workflow{
		Store:     deps.Bookings,
		Machine:   approval.NewMachine(),
		Notifier:  deps.Notifier,
		Publisher: deps.Publisher,
	}}
	reviewHandlers := review.Handlers{
		Store:    deps.Reviews,
		Notifier: deps.Notifier,
		Validate: review.NewValidator(),
	}
	limit := func(scope string) func(http.Handler) http.Handler {
		return api.RateLimit(deps.Cfg.RateLimit, deps.Redis, scope)
	}

	r.Route("/api/wl", func(r chi.Router) {
		// Called from the public site; only configured origins get CORS headers.
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAgeSeconds:  600,
		}))
		// Optional: booking links work without a session.
		r.Use(api.SessionAuth(deps.Cfg.Auth))

		r.Route("/booking/{bookingref}", func(r chi.Router) {
			r.Get("/", bookingHandlers.Get)
			r.With(limit("booking_field")).Patch("/field", bookingHandlers.PatchField)
			r.With(api.RequireAdmin).Get("/events", bookingHandlers.Events)
		})

		r.Route("/review", func(r chi.Router) {
			r.With(limit("review")).Post("/", reviewHandlers.Create)
			r.With(limit("review")).Patch("/", reviewHandlers.Patch)
			r.With(api.RequireAdmin).Get("/summary", reviewHandlers.Summary)
		})
	})

	return r
}
