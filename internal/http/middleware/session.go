package middleware

import (
	"context"
	"net/http"

	"github.com/venuetix/bookings/internal/session"
	"github.com/venuetix/bookings/pkg/logger"
)

type ctxKey string

const ctxSession ctxKey = "session"

// WithSession resolves the visitor's session from the cookie (creating one
// when absent) and stores it in the request context.
func WithSession(manager *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, fresh := manager.Load(r)
			if fresh {
				if err := manager.Issue(w, sess); err != nil {
					logger.ErrorContext(r.Context(), "Failed to issue session cookie", "error", err)
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
			}
			ctx := context.WithValue(r.Context(), ctxSession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Session returns the request's session. It panics when WithSession did not
// run, which is a routing bug.
func Session(r *http.Request) *session.Session {
	sess, ok := r.Context().Value(ctxSession).(*session.Session)
	if !ok {
		panic("session middleware not installed")
	}
	return sess
}

// RequireUser redirects anonymous visitors to the login page. It also places
// the user id in the context for the request loggers.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := Session(r)
		userID, err := sess.UserID(r.Context())
		if err != nil {
			logger.ErrorContext(r.Context(), "Failed to read session user", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if userID == 0 {
			if err := sess.Flash(r.Context(), "warning", "Please log in first."); err != nil {
				logger.ErrorContext(r.Context(), "Failed to queue flash", "error", err)
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), logger.UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
