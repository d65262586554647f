package reviews

import (
	"github.com/go-chi/chi/v5"

	"github.com/coursehub/coursehub/internal/app/system/auth"
)

// Routes returns the /api/review subrouter.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)

	r.Get("/getreview", h.ServeList)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Post("/createreview", h.ServeCreate)
	})

	return r
}
