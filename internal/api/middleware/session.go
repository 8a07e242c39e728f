package middleware

import (
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

// LoadSession copies the logged-in user from the web session, if any, onto
// the request. It never rejects a request.
func LoadSession(name string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, _ := session.Get(name, c)
			if sess != nil {
				userID, _ := sess.Values[KeyUserID].(string)
				username, _ := sess.Values[KeyUsername].(string)
				if userID != "" {
					SetIdentity(c, userID, username)
				}
			}
			return next(c)
		}
	}
}

// RequireSession guards routes that need a logged-in user. It returns
// domain.ErrUnauthenticated and leaves the response to the error handler.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, _ := c.Get(KeyUserID).(string); id == "" {
				return domain.ErrUnauthenticated
			}
			return next(c)
		}
	}
}

// RedirectIfAuthenticated sends logged-in users away from the login and
// registration pages.
func RedirectIfAuthenticated(to string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, _ := c.Get(KeyUserID).(string); id != "" {
				return c.Redirect(http.StatusSeeOther, to)
			}
			return next(c)
		}
	}
}
