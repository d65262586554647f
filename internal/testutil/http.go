package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/coursehub/coursehub/internal/app/system/auth"
	"github.com/coursehub/coursehub/internal/domain/models"
)

// WithUser injects a signed-in user into the request context,
// bypassing the session middleware.
func WithUser(r *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	})
}

// StudentSession returns a request context user with the student role,
// for handler tests that don't need a backing document.
func StudentSession() models.User {
	return models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Test Student",
		Email: "student@test.com",
		Role:  "student",
	}
}

// EducatorSession returns a context user with the educator role.
func EducatorSession() models.User {
	return models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Test Educator",
		Email: "educator@test.com",
		Role:  "educator",
	}
}

// NewJSONRequest builds a request with a JSON-encoded body.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON unmarshals a response body into dst.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response body %q: %v", rec.Body.String(), err)
	}
}

// AssertStatus fails the test when the recorded status differs,
// including the body to make failures diagnosable.
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status code: got %d, want %d (body: %s)", rec.Code, want, rec.Body.String())
	}
}

// AssertMessage checks the "message" field of a JSON response.
func AssertMessage(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	DecodeJSON(t, rec, &body)
	if body.Message != want {
		t.Errorf("message: got %q, want %q", body.Message, want)
	}
}
