package payments

import (
	"github.com/go-chi/chi/v5"

	"github.com/coursehub/coursehub/internal/app/system/auth"
)

// Routes returns the /api/payment subrouter. Both endpoints require a
// signed-in user.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)
	r.Use(sm.RequireSignedIn)

	r.Post("/createorder", h.ServeCreateOrder)
	r.Post("/verify", h.ServeVerify)
	return r
}
