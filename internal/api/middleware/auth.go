package middleware

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

// Auth validates the bearer JWT of API requests and sets the identity from
// its sub and username claims. Failures return domain.ErrUnauthenticated.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return fmt.Errorf("%w: missing authorization header", domain.ErrUnauthenticated)
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return fmt.Errorf("%w: invalid authorization header", domain.ErrUnauthenticated)
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
			}

			sub, _ := claims.GetSubject()
			if sub == "" {
				return fmt.Errorf("%w: token has no subject", domain.ErrUnauthenticated)
			}
			username, _ := claims["username"].(string)

			SetIdentity(c, sub, username)
			return next(c)
		}
	}
}
