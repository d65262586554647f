package profile

import (
	"github.com/go-chi/chi/v5"

	"github.com/coursehub/coursehub/internal/app/system/auth"
)

// Routes returns the /api/user subrouter. Everything here requires a
// signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)
	r.Use(sm.RequireSignedIn)

	r.Get("/getcurrentuser", h.ServeCurrentUser)
	r.Post("/profile", h.ServeUpdateProfile)
	return r
}
