package authgoogle

import "github.com/go-chi/chi/v5"

// Register adds the Google sign-in endpoints to an /api/auth subrouter.
func Register(r chi.Router, h *Handler) {
	r.Get("/google", h.ServeLogin)
	r.Get("/google/callback", h.ServeCallback)
}
