// Package passwordreset implements the OTP-based password reset flow:
// send a short-lived 4-digit code by email, verify it, then accept a
// new password.
package passwordreset

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	userstore "github.com/coursehub/coursehub/internal/app/store/users"
	"github.com/coursehub/coursehub/internal/app/system/inputval"
	"github.com/coursehub/coursehub/internal/app/system/jsonutil"
	"github.com/coursehub/coursehub/internal/app/system/mailer"
	"github.com/coursehub/coursehub/internal/app/system/ratelimit"
	"github.com/coursehub/coursehub/internal/app/system/timeouts"
)

// OtpTTL is how long a reset code stays valid.
const OtpTTL = 5 * time.Minute

type Handler struct {
	Users    *userstore.Store
	Mail     mailer.Sender
	Limiter  *ratelimit.LoginLimiter
	SiteName string
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, mail mailer.Sender, limiter *ratelimit.LoginLimiter, siteName string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Mail:     mail,
		Limiter:  limiter,
		SiteName: siteName,
		Log:      logger,
	}
}

type emailRequest struct {
	Email string `json:"email"`
}

// ServeSendOtp handles POST /api/auth/send-otp.
func (h *Handler) ServeSendOtp(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if allowed, reason := h.Limiter.Check(r, req.Email); !allowed {
		jsonutil.Error(w, http.StatusTooManyRequests, reason)
		return
	}

	code, err := generateOtp()
	if err != nil {
		h.Log.Error("send-otp: generate code", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not send code")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "send reset otp")
	defer cancel()

	if err := h.Users.SetResetOtp(ctx, req.Email, code, time.Now().Add(OtpTTL)); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.Log.Error("send-otp: store code", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not send code")
		return
	}

	msg := mailer.BuildResetOtpEmail(mailer.ResetOtpData{
		SiteName:  h.SiteName,
		Code:      code,
		ExpiresIn: "5 minutes",
	})
	msg.To = req.Email
	if err := h.Mail.Send(msg); err != nil {
		h.Log.Error("send-otp: send email", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not send code")
		return
	}

	h.Log.Info("reset otp sent", zap.String("email", req.Email))
	jsonutil.Respond(w, http.StatusOK, map[string]string{"message": "Email successfully sent"})
}

type verifyRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

// ServeVerifyOtp handles POST /api/auth/verify-otp. Wrong, expired,
// and already-used codes all get the same answer.
func (h *Handler) ServeVerifyOtp(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "verify reset otp")
	defer cancel()

	if err := h.Users.VerifyOtp(ctx, req.Email, req.Otp); err != nil {
		if err == userstore.ErrInvalidOtp {
			jsonutil.Error(w, http.StatusBadRequest, "Invalid OTP")
			return
		}
		h.Log.Error("verify-otp", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not verify code")
		return
	}

	jsonutil.Respond(w, http.StatusOK, map[string]string{"message": "OTP verified"})
}

type resetRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeResetPassword handles POST /api/auth/reset-password.
func (h *Handler) ServeResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "reset password")
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil && err != mongo.ErrNoDocuments {
		h.Log.Error("reset-password: lookup", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not reset password")
		return
	}
	if user == nil || !user.OtpVerified {
		jsonutil.Error(w, http.StatusNotFound, "OTP verification required")
		return
	}

	if !inputval.IsStrongPassword(req.Password) {
		jsonutil.Error(w, http.StatusBadRequest, "Please enter a strong password (minimum 8 characters)")
		return
	}

	if err := h.Users.ResetPassword(ctx, req.Email, req.Password); err != nil {
		if err == userstore.ErrOtpNotVerified {
			jsonutil.Error(w, http.StatusNotFound, "OTP verification required")
			return
		}
		h.Log.Error("reset-password: store", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "could not reset password")
		return
	}

	h.Log.Info("password reset", zap.String("email", req.Email))
	jsonutil.Respond(w, http.StatusOK, map[string]string{"message": "Password Reset Successfully"})
}

// generateOtp returns a 4-digit code from crypto/rand. Codes may have
// leading zeros; they are compared as strings.
func generateOtp() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
