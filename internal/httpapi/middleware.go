package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/park285/cheese-web/internal/session"
)

type ctxKey int

const ctxKeySession ctxKey = iota

func sessionMiddleware(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := sessions.Get(chi.URLParam(r, "id"))
			if err != nil {
				writeSessionError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeySession, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(ctxKeySession).(*session.Session)
}
