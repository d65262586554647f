package authgoogle_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/app/features/authgoogle"
	"github.com/coursehub/coursehub/internal/app/store/oauthstate"
	userstore "github.com/coursehub/coursehub/internal/app/store/users"
	"github.com/coursehub/coursehub/internal/app/system/auth"
	"github.com/coursehub/coursehub/internal/testutil"
)

func newHandler(t *testing.T) (*authgoogle.Handler, *oauthstate.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	sm, err := auth.NewSessionManager(
		"0123456789abcdef0123456789abcdef", "coursehub_session", "",
		7*24*time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	states := oauthstate.New(db)
	h := authgoogle.NewHandler(
		userstore.New(db), states, sm,
		"client-id", "client-secret",
		"https://api.example.com", "https://app.example.com",
		zap.NewNop())
	return h, states
}

func TestServeLogin_RedirectsToGoogleWithSavedState(t *testing.T) {
	h, states := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google", nil)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status: got %d", rec.Code)
	}

	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect: %v", err)
	}
	if !strings.Contains(loc.Host, "google") {
		t.Errorf("expected redirect to Google, got %s", loc.Host)
	}

	state := loc.Query().Get("state")
	if state == "" {
		t.Fatal("expected a state parameter")
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, valid, err := states.Validate(ctx, state)
	if err != nil {
		t.Fatalf("validate state: %v", err)
	}
	if !valid {
		t.Error("expected the redirect state to be stored")
	}
}

func TestServeLogin_Unconfigured(t *testing.T) {
	h, _ := newHandler(t)
	h.ClientID = ""
	h.ClientSecret = ""

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google", nil)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Location"), "error=google_not_configured") {
		t.Errorf("unexpected redirect: %s", rec.Header().Get("Location"))
	}
}

func TestServeCallback_RejectsUnknownState(t *testing.T) {
	h, _ := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state=bogus&code=abc", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Location"), "error=invalid_state") {
		t.Errorf("unexpected redirect: %s", rec.Header().Get("Location"))
	}
}

func TestServeCallback_StateIsSingleUse(t *testing.T) {
	h, states := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := states.Save(ctx, "one-shot", "", time.Now().UTC().Add(10*time.Minute)); err != nil {
		t.Fatalf("save state: %v", err)
	}

	_, valid, err := states.Validate(ctx, "one-shot")
	if err != nil || !valid {
		t.Fatalf("first validate: valid=%v err=%v", valid, err)
	}

	// Replay must fail even before any code exchange happens.
	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state=one-shot&code=abc", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if !strings.Contains(rec.Header().Get("Location"), "error=invalid_state") {
		t.Errorf("expected replayed state rejected, got %s", rec.Header().Get("Location"))
	}
}

func TestServeCallback_GoogleDenied(t *testing.T) {
	h, _ := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?error=access_denied", nil)
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)

	if !strings.Contains(rec.Header().Get("Location"), "error=google_denied") {
		t.Errorf("unexpected redirect: %s", rec.Header().Get("Location"))
	}
}
