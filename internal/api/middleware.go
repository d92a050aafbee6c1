package api

import (
	"net/http"
	"strings"
	"time"

	"whitelotus/pkg/config"
	"whitelotus/pkg/session"
)

// SessionAuth attaches the caller's identity when a bearer token is present.
//
// Contract:
// - No Authorization header: the request continues anonymously (booking link access).
// - Invalid or expired token: 401, never downgraded to anonymous.
// - Emails listed in ADMIN_EMAILS are treated as admin regardless of the token role.
func SessionAuth(cfg config.AuthConfig) func(http.Handler) http.Handler {
	admins := make(map[string]bool, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := strings.TrimSpace(r.Header.Get("Authorization"))
			if authz == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unsupported authorization scheme")
				return
			}

			id, err := session.Verify(strings.TrimSpace(authz[7:]), cfg.JWTSecret, cfg.Audience, time.Now())
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid session token")
				return
			}
			if admins[id.Email] {
				id.Role = session.RoleAdmin
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), id)))
		})
	}
}

// RequireAdmin rejects anonymous callers with 401 and non-admins with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s := SessionFromContext(r.Context())
		if s == nil {
			WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session token")
			return
		}
		if !s.IsAdmin() {
			WriteError(w, http.StatusForbidden, "FORBIDDEN", "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}
