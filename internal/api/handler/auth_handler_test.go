package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk/internal/api/view"
	"github.com/taskdesk/taskdesk/internal/core/domain"
)

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newAPIEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password string) (*domain.User, error) {
			if username != "alice" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &domain.User{ID: "u1", Username: username}, nil
		},
	}
	c, rec := jsonContext(newAPIEcho(), http.MethodPost, "/api/v1/auth/register", `{"username":"alice","password":"secret"}`)

	if err := NewAuthHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" || user["id"] != "u1" {
		t.Fatalf("unexpected user payload: %+v", resp)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialised")
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password string) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	c, _ := jsonContext(newAPIEcho(), http.MethodPost, "/api/v1/auth/register", `{"username":"bob","password":"pw"}`)

	if err := NewAuthHandler(stub).Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password string) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	c, _ := jsonContext(newAPIEcho(), http.MethodPost, "/api/v1/auth/register", "not-json")

	err := NewAuthHandler(stub).Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Register_MissingPassword(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password string) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	c, _ := jsonContext(newAPIEcho(), http.MethodPost, "/api/v1/auth/register", `{"username":"bob"}`)

	err := NewAuthHandler(stub).Register(c)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["password"] == "" {
		t.Fatalf("expected password field error, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, *domain.User, error) {
			if username != "alice" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return "token123", &domain.User{ID: "u1", Username: "alice"}, nil
		},
	}
	c, rec := jsonContext(newAPIEcho(), http.MethodPost, "/api/v1/auth/login", `{"username":"alice","password":"secret"}`)

	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	c, _ := jsonContext(newAPIEcho(), http.MethodPost, "/api/v1/auth/login", `{"username":"alice","password":"bad"}`)

	if err := NewAuthHandler(stub).Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestWebAuthHandler_Login(t *testing.T) {
	f := newWebFixture()
	stub := &stubAuthService{
		authenticateFn: func(ctx context.Context, username, password string) (*domain.User, error) {
			if password != "secret" {
				return nil, domain.ErrInvalidCredentials
			}
			return &domain.User{ID: "u1", Username: username}, nil
		},
	}
	h := NewWebAuthHandler(stub, f.sessions)

	rec, err := f.serve(t, h.Login, form("/login", url.Values{"username": {"alice"}, "password": {"secret"}}), "")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assertRedirect(t, rec, "/")
	if fl := f.flashes(t, rec); len(fl) != 1 || fl[0].Kind != view.FlashSuccess {
		t.Fatalf("expected success flash, got %+v", fl)
	}

	rec, err = f.serve(t, h.Login, form("/login", url.Values{"username": {"alice"}, "password": {"nope"}}), "")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized || f.renderer.name != "login" {
		t.Fatalf("expected login form with 401, got %d %s", rec.Code, f.renderer.name)
	}
	if fl := f.renderer.page.Flashes; len(fl) != 1 || fl[0].Kind != view.FlashDanger {
		t.Fatalf("expected danger flash on page, got %+v", fl)
	}
}

func TestWebAuthHandler_Register(t *testing.T) {
	f := newWebFixture()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password string) (*domain.User, error) {
			if username == "taken" {
				return nil, domain.ErrUserExists
			}
			return &domain.User{ID: "u1", Username: username}, nil
		},
	}
	h := NewWebAuthHandler(stub, f.sessions)

	mismatch := url.Values{"username": {"bob"}, "password": {"a"}, "confirm_password": {"b"}}
	rec, err := f.serve(t, h.Register, form("/register", mismatch), "")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity || f.renderer.page.Errors["confirm_password"] == "" {
		t.Fatalf("expected confirm_password error, got %d %+v", rec.Code, f.renderer.page.Errors)
	}

	taken := url.Values{"username": {"taken"}, "password": {"a"}, "confirm_password": {"a"}}
	rec, _ = f.serve(t, h.Register, form("/register", taken), "")
	if rec.Code != http.StatusUnprocessableEntity || f.renderer.page.Errors["username"] == "" {
		t.Fatalf("expected username error, got %d %+v", rec.Code, f.renderer.page.Errors)
	}

	ok := url.Values{"username": {"bob"}, "password": {"a"}, "confirm_password": {"a"}}
	rec, err = f.serve(t, h.Register, form("/register", ok), "")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assertRedirect(t, rec, "/login")
}

func TestWebAuthHandler_Logout(t *testing.T) {
	f := newWebFixture()
	h := NewWebAuthHandler(&stubAuthService{}, f.sessions)

	rec, err := f.serve(t, h.Logout, httptest.NewRequest(http.MethodGet, "/logout", nil), "u1")
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assertRedirect(t, rec, "/login")
	if fl := f.flashes(t, rec); len(fl) != 1 || fl[0].Kind != view.FlashInfo {
		t.Fatalf("expected info flash, got %+v", fl)
	}
}
