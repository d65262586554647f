// Package authgoogle implements server-side Google OAuth sign-in.
// First-time visitors get an account created with the student role;
// returning users are matched by email.
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/coursehub/coursehub/internal/app/store/oauthstate"
	userstore "github.com/coursehub/coursehub/internal/app/store/users"
	"github.com/coursehub/coursehub/internal/app/system/auth"
	"github.com/coursehub/coursehub/internal/app/system/timeouts"
	"github.com/coursehub/coursehub/internal/domain/models"
)

// stateTTL bounds how long a pending OAuth round trip stays valid.
const stateTTL = 10 * time.Minute

type Handler struct {
	Users      *userstore.Store
	States     *oauthstate.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://coursehub.example.com/api/auth/google/callback"
	FrontendURL  string // where to land the browser after sign-in
}

func NewHandler(
	users *userstore.Store,
	states *oauthstate.Store,
	sessionMgr *auth.SessionManager,
	clientID, clientSecret, baseURL, frontendURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:        users,
		States:       states,
		SessionMgr:   sessionMgr,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  strings.TrimRight(baseURL, "/") + "/api/auth/google/callback",
		FrontendURL:  frontendURL,
		Log:          logger,
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured reports whether Google sign-in can be offered.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /api/auth/google: save a one-shot state and
// bounce the browser to Google's consent screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("google oauth not configured")
		h.redirectError(w, r, "google_not_configured")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("generate oauth state", zap.Error(err))
		h.redirectError(w, r, "internal")
		return
	}

	returnURL := r.URL.Query().Get("return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.States.Save(ctx, state, returnURL, time.Now().UTC().Add(stateTTL)); err != nil {
		h.Log.Error("save oauth state", zap.Error(err))
		h.redirectError(w, r, "internal")
		return
	}

	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /api/auth/google/callback: validate the
// state, exchange the code, fetch the Google profile, find or create
// the account, then issue a session and land on the frontend.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("google oauth denied",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		h.redirectError(w, r, "google_denied")
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.redirectError(w, r, "invalid_state")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.States.Validate(ctx, state)
	if err != nil {
		h.Log.Error("validate oauth state", zap.Error(err))
		h.redirectError(w, r, "internal")
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired oauth state")
		h.redirectError(w, r, "invalid_state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectError(w, r, "invalid_code")
		return
	}

	token, err := h.oauth2Config().Exchange(r.Context(), code)
	if err != nil {
		h.Log.Error("exchange oauth code", zap.Error(err))
		h.redirectError(w, r, "token_exchange")
		return
	}

	profile, err := fetchGoogleUserInfo(r.Context(), token)
	if err != nil {
		h.Log.Error("fetch google userinfo", zap.Error(err))
		h.redirectError(w, r, "user_info")
		return
	}
	if profile.Email == "" {
		h.Log.Warn("google userinfo without email")
		h.redirectError(w, r, "user_info")
		return
	}

	user, err := h.findOrCreateUser(ctx, profile)
	if err != nil {
		h.Log.Error("find or create google user", zap.Error(err))
		h.redirectError(w, r, "internal")
		return
	}

	if err := h.SessionMgr.IssueSession(w, r, user); err != nil {
		h.Log.Error("issue session after google login", zap.Error(err))
		h.redirectError(w, r, "internal")
		return
	}

	h.Log.Info("google login",
		zap.String("user_id", user.ID.Hex()),
		zap.String("email", user.Email))

	dest := h.FrontendURL
	if returnURL != "" && strings.HasPrefix(returnURL, "/") {
		dest = strings.TrimRight(h.FrontendURL, "/") + returnURL
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// findOrCreateUser matches by email; unknown emails get a fresh
// student account with no password hash.
func (h *Handler) findOrCreateUser(ctx context.Context, profile *googleUserInfo) (*models.User, error) {
	user, err := h.Users.GetByEmail(ctx, profile.Email)
	if err == nil {
		return user, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	created, err := h.Users.Create(ctx, models.User{
		Name:     profile.Name,
		Email:    profile.Email,
		Role:     "student",
		PhotoURL: profile.Picture,
	})
	if err == userstore.ErrDuplicateEmail {
		// Lost a race with a concurrent first login for the same account.
		return h.Users.GetByEmail(ctx, profile.Email)
	}
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (h *Handler) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, strings.TrimRight(h.FrontendURL, "/")+"/login?error="+code, http.StatusSeeOther)
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
