package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the middleware stack and every route.
func NewRouter(h *Handlers, allowedOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(allowedOrigin))

	r.Get("/healthz", h.Healthz)

	r.Group(func(r chi.Router) {
		r.Use(LoadSession(h.Sessions, h.Session.CookieName))

		r.Post("/auth/guest", h.GuestLogin)
		r.Post("/auth/google", h.GoogleLogin)
		r.Get("/user", h.CurrentUser)
		r.Post("/logout", h.Logout)

		r.Post("/analyze", h.Analyze)
		r.Get("/history", h.History)
	})

	return r
}
