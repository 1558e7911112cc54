package web

import (
	"context"
	"net/http"
	"os"

	"log/slog"

	"github.com/gophora/portal/internal/guard"
	"github.com/gophora/portal/internal/models"
	"github.com/gophora/portal/internal/session"
)

type ctxKey string

const (
	ctxSID     ctxKey = "sid"
	ctxSession ctxKey = "session"
)

// package-level logger used by middleware and handlers; can be set via SetLogger from caller
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the web package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
		)
		next.ServeHTTP(w, r)
	})
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic", slog.Any("err", err))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// SessionMiddleware resolves the request's session id from the signed
// cookie (minting a fresh session when none exists) and loads the auth
// state into the request context for everything downstream.
func SessionMiddleware(m *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid, err := m.SID(w, r)
			if err != nil {
				logger.Error("session resolve failed", slog.Any("err", err))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			sess, err := m.Values().Session(r.Context(), sid)
			if err != nil {
				logger.Error("session load failed", slog.Any("err", err))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			ctx := context.WithValue(r.Context(), ctxSID, sid)
			ctx = context.WithValue(ctx, ctxSession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GuardMiddleware bounces requests that the session may not view. It must
// run after SessionMiddleware.
func GuardMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := guard.Authorize(r.URL.Path, sessionFrom(r))
		if !d.Allow {
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sidFrom(r *http.Request) string {
	if v, ok := r.Context().Value(ctxSID).(string); ok {
		return v
	}
	return ""
}

func sessionFrom(r *http.Request) models.Session {
	if v, ok := r.Context().Value(ctxSession).(models.Session); ok {
		return v
	}
	return models.Session{}
}
