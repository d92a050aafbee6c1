package api

import (
	"context"

	"whitelotus/pkg/session"
)

type ctxKey string

const ctxKeySession ctxKey = "session"

func WithSession(ctx context.Context, s *session.Identity) context.Context {
	return context.WithValue(ctx, ctxKeySession, s)
}

// SessionFromContext returns nil for anonymous requests.
func SessionFromContext(ctx context.Context) *session.Identity {
	v := ctx.Value(ctxKeySession)
	if v == nil {
		return nil
	}
	s, _ := v.(*session.Identity)
	return s
}
