// Package login implements password-based account endpoints: signup,
// login, and logout. Google sign-in lives in authgoogle, password
// reset in passwordreset.
package login

import (
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	userstore "github.com/coursehub/coursehub/internal/app/store/users"
	"github.com/coursehub/coursehub/internal/app/system/auth"
	"github.com/coursehub/coursehub/internal/app/system/inputval"
	"github.com/coursehub/coursehub/internal/app/system/jsonutil"
	"github.com/coursehub/coursehub/internal/app/system/normalize"
	"github.com/coursehub/coursehub/internal/app/system/ratelimit"
	"github.com/coursehub/coursehub/internal/app/system/timeouts"
	"github.com/coursehub/coursehub/internal/domain/models"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		Log:        logger,
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ServeSignup handles POST /api/auth/signup.
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	email := normalize.Email(req.Email)
	if !inputval.IsValidEmail(email) {
		jsonutil.Error(w, http.StatusBadRequest, "Please enter valid Email")
		return
	}
	if !inputval.IsStrongPassword(req.Password) {
		jsonutil.Error(w, http.StatusBadRequest, "Please enter a strong password (minimum 8 characters)")
		return
	}
	if req.Role != "" && !inputval.IsValidRole(normalize.Role(req.Role)) {
		jsonutil.Error(w, http.StatusBadRequest, `Invalid role. Must be 'student' or 'educator'`)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), userstore.BcryptCost)
	if err != nil {
		h.Log.Error("signup: hash password", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "signup failed")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "signup")
	defer cancel()

	// The unique email index backs this up; racing signups lose with
	// the same 400 as the pre-existing-account case.
	user, err := h.Users.Create(ctx, models.User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         req.Role,
	})
	if err != nil {
		if err == userstore.ErrDuplicateEmail {
			jsonutil.Error(w, http.StatusBadRequest, "email already exist")
			return
		}
		h.Log.Error("signup: create user", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "signup failed")
		return
	}

	if err := h.SessionMgr.IssueSession(w, r, &user); err != nil {
		h.Log.Error("signup: issue session", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.Log.Info("user signed up",
		zap.String("user_id", user.ID.Hex()),
		zap.String("role", user.Role))
	jsonutil.Respond(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeLogin handles POST /api/auth/login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if allowed, reason := h.Limiter.Check(r, req.Email); !allowed {
		jsonutil.Error(w, http.StatusTooManyRequests, reason)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.Error(w, http.StatusBadRequest, "user does not exist")
			return
		}
		h.Log.Error("login: lookup user", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	if !user.HasPassword() {
		jsonutil.Error(w, http.StatusBadRequest, "Please login with Google or reset your password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		jsonutil.Error(w, http.StatusBadRequest, "incorrect Password")
		return
	}

	h.Limiter.ResetEmail(req.Email)

	if err := h.SessionMgr.IssueSession(w, r, user); err != nil {
		h.Log.Error("login: issue session", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.Log.Info("user logged in", zap.String("user_id", user.ID.Hex()))
	jsonutil.Respond(w, http.StatusOK, user)
}

// ServeLogout handles GET /api/auth/logout.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	h.SessionMgr.ClearSession(w, r)
	jsonutil.Respond(w, http.StatusOK, map[string]string{"message": "logOut Successfully"})
}
