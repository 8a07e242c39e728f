package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
)

// Keys under which the authenticated identity is stored, both in the echo
// context and in the gorilla session.
const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
)

type identityKey struct{}

type identity struct {
	userID   string
	username string
}

// SetIdentity records the authenticated user on the echo context and on the
// request's context.Context.
func SetIdentity(c echo.Context, userID, username string) {
	c.Set(KeyUserID, userID)
	c.Set(KeyUsername, username)
	req := c.Request()
	ctx := context.WithValue(req.Context(), identityKey{}, identity{userID: userID, username: username})
	c.SetRequest(req.WithContext(ctx))
}

// UserFromContext returns the identity placed by SetIdentity.
func UserFromContext(ctx context.Context) (userID, username string, ok bool) {
	id, ok := ctx.Value(identityKey{}).(identity)
	if !ok || id.userID == "" {
		return "", "", false
	}
	return id.userID, id.username, true
}
