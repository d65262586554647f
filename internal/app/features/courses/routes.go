package courses

import (
	"github.com/go-chi/chi/v5"

	"github.com/coursehub/coursehub/internal/app/system/auth"
)

// Routes returns the /api/course subrouter. Storefront reads are
// public; everything that mutates requires the educator role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.LoadSessionUser)

	r.Get("/getpublished", h.ServePublished)
	r.Get("/getcoursebyid/{courseId}", h.ServeGetByID)
	r.Get("/getcourselecture/{courseId}", h.ServeCourseLectures)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Get("/getcreator", h.ServeCreatorCourses)
	})

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireRole("educator"))
		r.Post("/create", h.ServeCreate)
		r.Post("/editcourse/{courseId}", h.ServeEdit)
		r.Delete("/remove/{courseId}", h.ServeRemove)
		r.Post("/createlecture/{courseId}", h.ServeCreateLecture)
		r.Post("/editlecture/{lectureId}", h.ServeEditLecture)
		r.Delete("/removelecture/{lectureId}", h.ServeRemoveLecture)
	})

	return r
}
