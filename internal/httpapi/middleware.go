package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	errx "github.com/OnePunchManz/sumi-backend/internal/core/error"
	"github.com/OnePunchManz/sumi-backend/internal/session"
	logx "github.com/OnePunchManz/sumi-backend/pkg/logger"
)

const headerRequestID = "X-Request-ID"

// RequestID takes X-Request-ID from the request or generates one, and tags
// the request logger with it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := logx.WithRequestID(r.Context(), id)
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logger logs one line per request.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logx.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("http request")
	})
}

// CORS allows credentialed requests from a single frontend origin.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type sessionCtxKey struct{}

// sessionFrom returns the session loaded by LoadSession, or nil.
func sessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionCtxKey{}).(*session.Session)
	return s
}

func withSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// LoadSession resolves the session cookie. Unknown or expired sessions are
// treated as absent; handlers that need one create it.
func LoadSession(store session.Store, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.Get(r.Context(), c.Value)
			switch {
			case err == nil:
				r = r.WithContext(withSession(r.Context(), sess))
			case errors.Is(err, errx.ErrSessionNotFound):
				logx.Ctx(r.Context()).Debug().Msg("stale session cookie")
			default:
				writeAppError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
