package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk/internal/api/middleware"
	"github.com/taskdesk/taskdesk/internal/core/domain"
)

// ctxUser returns the identity placed on the request by the Auth or session
// middleware. Its absence means the route was wired without a guard.
func ctxUser(c echo.Context) (userID, username string, err error) {
	userID, username, ok := middleware.UserFromContext(c.Request().Context())
	if !ok {
		return "", "", domain.ErrUnauthenticated
	}
	return userID, username, nil
}
