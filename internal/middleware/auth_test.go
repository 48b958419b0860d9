package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/davitp/timesheet-tracker/internal/middleware"
	"github.com/davitp/timesheet-tracker/internal/model"
	"github.com/davitp/timesheet-tracker/internal/repository"
	"github.com/davitp/timesheet-tracker/internal/utils"
)

const secret = "test-secret"

// stubUsers satisfies middleware.UserSource with a fixed answer.
type stubUsers struct {
	user model.User
	err  error
}

func (s stubUsers) GetByID(ctx context.Context, id uint64) (model.User, error) {
	if s.err != nil {
		return model.User{}, s.err
	}
	return s.user, nil
}

func runGuard(t *testing.T, authHeader string, users middleware.UserSource) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/timesheet", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	next := func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	}
	if err := middleware.BearerAuth(secret, users)(next)(c); err != nil {
		t.Fatalf("guard returned error: %v", err)
	}
	return rec, called
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
	}
	return body.Message
}

func issue(t *testing.T, ttlDays int) string {
	t.Helper()
	tok, err := utils.NewSessionToken(secret, 42, "ann@x.com", "Ann Lee", ttlDays)
	if err != nil {
		t.Fatalf("NewSessionToken: %v", err)
	}
	return tok.Token
}

func TestBearerAuthMissingHeader(t *testing.T) {
	rec, called := runGuard(t, "", stubUsers{})
	if called {
		t.Fatal("next handler was called without a token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if got := message(t, rec); !strings.Contains(got, "Authorization header") {
		t.Errorf("message = %q, want authorization header complaint", got)
	}
}

func TestBearerAuthMalformedToken(t *testing.T) {
	rec, called := runGuard(t, "Bearer not-a-token", stubUsers{})
	if called {
		t.Fatal("next handler was called with a malformed token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if got := message(t, rec); got != "Invalid token" {
		t.Errorf("message = %q, want %q", got, "Invalid token")
	}
}

func TestBearerAuthExpiredToken(t *testing.T) {
	rec, called := runGuard(t, "Bearer "+issue(t, -1), stubUsers{})
	if called {
		t.Fatal("next handler was called with an expired token")
	}
	if got := message(t, rec); got != "Token has expired" {
		t.Errorf("message = %q, want %q", got, "Token has expired")
	}
}

func TestBearerAuthUnknownUser(t *testing.T) {
	rec, called := runGuard(t, "Bearer "+issue(t, 7), stubUsers{err: repository.ErrUserNotFound})
	if called {
		t.Fatal("next handler was called for a deleted user")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// A structurally valid token is still rejected when it is not the user's
// stored active token, which is exactly what happens after logout or after a
// login from another device.
func TestBearerAuthSupersededToken(t *testing.T) {
	old := issue(t, 7)
	users := stubUsers{user: model.User{ID: 42, Email: "ann@x.com", Name: "Ann Lee", ActiveToken: "some-newer-token"}}
	rec, called := runGuard(t, "Bearer "+old, users)
	if called {
		t.Fatal("next handler was called with a superseded token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if got := message(t, rec); got != "Invalid token" {
		t.Errorf("message = %q, want %q", got, "Invalid token")
	}
}

func TestBearerAuthSuccess(t *testing.T) {
	token := issue(t, 7)
	users := stubUsers{user: model.User{ID: 42, Email: "ann@x.com", Name: "Ann Lee", ActiveToken: token}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/timesheet", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID any
	next := func(c echo.Context) error {
		gotID = c.Get("user_id")
		return c.NoContent(http.StatusOK)
	}
	if err := middleware.BearerAuth(secret, users)(next)(c); err != nil {
		t.Fatalf("guard returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if id, ok := gotID.(uint64); !ok || id != 42 {
		t.Errorf("user_id in context = %v, want uint64 42", gotID)
	}
}
