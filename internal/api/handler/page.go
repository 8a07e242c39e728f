package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk/internal/api/view"
)

// CSRFContextKey is where the CSRF middleware stores the form token.
const CSRFContextKey = "csrf"

// pages renders templates with the values every page shares.
type pages struct {
	sessions *Sessions
	now      func() time.Time
}

func (p pages) render(c echo.Context, status int, name, title string, errs map[string]string, data any) error {
	_, username, _ := ctxUser(c)
	token, _ := c.Get(CSRFContextKey).(string)

	return c.Render(status, name, view.Page{
		Title:     title,
		Username:  username,
		Flashes:   p.sessions.popFlashes(c),
		CSRFToken: token,
		Year:      p.now().Year(),
		Errors:    errs,
		Data:      data,
	})
}

// RenderError renders the error page. It is used by the central error
// handler for HTML requests.
func (s *Sessions) RenderError(c echo.Context, status int, msg string) error {
	return pages{sessions: s, now: time.Now}.render(c, status, "error", "Error", nil, view.ErrorData{Status: status, Message: msg})
}
