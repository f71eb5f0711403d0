package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"payments-register/internal/domain"
)

type ctxKey string

const sessionKey ctxKey = "session"

const SessionHeader = "X-Session-ID"

var ErrNoSession = errors.New("session id is required")

type SessionLoader interface {
	Session(ctx context.Context, id string) (domain.SessionState, error)
}

// SessionID reads the session id from the {session_id} route parameter, the
// X-Session-ID header or the session_id query parameter, in that order. The
// query form exists for websocket clients, which cannot set headers.
func SessionID(r *http.Request) string {
	if id := chi.URLParam(r, "session_id"); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	return strings.TrimSpace(r.URL.Query().Get("session_id"))
}

// SessionMiddleware loads the advisor's workflow session into the request
// context. fail writes the response for a missing or unknown session.
func SessionMiddleware(loader SessionLoader, fail func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := SessionID(r)
			if id == "" {
				fail(w, r, ErrNoSession)
				return
			}

			state, err := loader.Session(r.Context(), id)
			if err != nil {
				fail(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSession(ctx context.Context) (domain.SessionState, error) {
	state, ok := ctx.Value(sessionKey).(domain.SessionState)
	if !ok {
		return domain.SessionState{}, ErrNoSession
	}
	return state, nil
}
