package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blogserver/internal/server/auth"
)

// identityContextKey is where sessionRequired stashes the authenticated
// identity in the echo context.
const identityContextKey = "identity"

// sessionRequired authenticates the request from the access-token cookie.
// The token alone proves identity; no user lookup happens here.
func (s *HTTPServer) sessionRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(accessCookieName)
		if err != nil || cookie.Value == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token missing"})
		}

		identity, err := auth.ParseAccessToken(cookie.Value, s.accessSecret)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
		}

		c.Set(identityContextKey, *identity)
		return next(c)
	}
}

func identityFromContext(c echo.Context) (auth.Identity, bool) {
	identity, ok := c.Get(identityContextKey).(auth.Identity)
	return identity, ok
}
