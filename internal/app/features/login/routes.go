package login

import "github.com/go-chi/chi/v5"

// Register adds the password auth endpoints to an /api/auth subrouter.
func Register(r chi.Router, h *Handler) {
	r.Post("/signup", h.ServeSignup)
	r.Post("/login", h.ServeLogin)
	r.Get("/logout", h.ServeLogout)
}
