package passwordreset

import "github.com/go-chi/chi/v5"

// Register adds the reset endpoints to an /api/auth subrouter.
func Register(r chi.Router, h *Handler) {
	r.Post("/send-otp", h.ServeSendOtp)
	r.Post("/verify-otp", h.ServeVerifyOtp)
	r.Post("/reset-password", h.ServeResetPassword)
}
