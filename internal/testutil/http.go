package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/CorneTubage/assohub/internal/app/system/auth"
)

// TestUser represents signed-in user data for testing HTTP handlers.
type TestUser struct {
	ID    string
	Name  string
	Admin bool
}

// AdminUser returns a TestUser with platform-operator rights.
func AdminUser() TestUser {
	return TestUser{
		ID:    "admin",
		Name:  "Test Admin",
		Admin: true,
	}
}

// RegularUser returns an ordinary signed-in TestUser with the given login id.
func RegularUser(id string) TestUser {
	return TestUser{
		ID:   id,
		Name: "Test " + id,
	}
}

// WithUser adds a user to the request context for testing authenticated
// handlers. This bypasses the session middleware and injects the user
// directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	sessionUser := &auth.SessionUser{
		ID:    user.ID,
		Name:  user.Name,
		Admin: user.Admin,
	}
	return auth.WithTestUser(r, sessionUser)
}

// NewRequest creates an HTTP request for testing. A non-nil body is sent as
// JSON.
func NewRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// NewAuthenticatedRequest creates an HTTP request with a user in context.
func NewAuthenticatedRequest(method, target string, body io.Reader, user TestUser) *http.Request {
	return WithUser(NewRequest(method, target, body), user)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	if !strings.Contains(r.Body.String(), expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
