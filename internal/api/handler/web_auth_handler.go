package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk/internal/api/view"
	"github.com/taskdesk/taskdesk/internal/core/domain"
	"github.com/taskdesk/taskdesk/internal/core/ports"
)

// WebAuthHandler serves the login, registration and logout pages.
type WebAuthHandler struct {
	auth ports.AuthService
	pages
}

func NewWebAuthHandler(auth ports.AuthService, sessions *Sessions) *WebAuthHandler {
	return &WebAuthHandler{auth: auth, pages: pages{sessions: sessions, now: time.Now}}
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type registerForm struct {
	Username        string `form:"username"         validate:"required,max=150"`
	Password        string `form:"password"         validate:"required"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

func (h *WebAuthHandler) ShowLogin(c echo.Context) error {
	return h.render(c, http.StatusOK, "login", "Log in", nil, loginForm{})
}

func (h *WebAuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	if err := c.Validate(&form); err != nil {
		return h.formError(c, "login", "Log in", err, loginForm{Username: form.Username})
	}

	user, err := h.auth.Authenticate(c.Request().Context(), form.Username, form.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		h.sessions.AddFlash(c, view.FlashDanger, "Invalid credentials.")
		return h.render(c, http.StatusUnauthorized, "login", "Log in", nil, loginForm{Username: form.Username})
	}
	if err != nil {
		return err
	}

	h.sessions.logIn(c, user.ID, user.Username)
	h.sessions.AddFlash(c, view.FlashSuccess, "Logged in successfully!")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *WebAuthHandler) ShowRegister(c echo.Context) error {
	return h.render(c, http.StatusOK, "register", "Register", nil, registerForm{})
}

func (h *WebAuthHandler) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return err
	}
	if err := c.Validate(&form); err != nil {
		return h.formError(c, "register", "Register", err, registerForm{Username: form.Username})
	}

	_, err := h.auth.Register(c.Request().Context(), form.Username, form.Password)
	if errors.Is(err, domain.ErrUserExists) {
		verr := domain.NewValidationError("username", "This username is already taken. Please choose another.")
		return h.formError(c, "register", "Register", verr, registerForm{Username: form.Username})
	}
	if err != nil {
		return err
	}

	h.sessions.AddFlash(c, view.FlashSuccess, "Registration successful! Please log in.")
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *WebAuthHandler) Logout(c echo.Context) error {
	h.sessions.logOut(c)
	h.sessions.AddFlash(c, view.FlashInfo, "You have been logged out.")
	return c.Redirect(http.StatusSeeOther, "/login")
}

// formError re-renders a form with its field messages, or passes err on when
// it is not a validation failure.
func (p pages) formError(c echo.Context, name, title string, err error, data any) error {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	return p.render(c, http.StatusUnprocessableEntity, name, title, verr.Fields, data)
}
