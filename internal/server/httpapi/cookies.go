package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blogserver/internal/server/services"
)

// Cookie names the SPA relies on.
const (
	accessCookieName  = "token"
	refreshCookieName = "refreshToken"
)

// sessionCookie builds a cross-site session cookie. The frontend is served
// from a different origin, so SameSite=None with Secure is required for the
// browser to send it at all.
func sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func (s *HTTPServer) setSessionCookies(c echo.Context, pair *services.TokenPair) {
	c.SetCookie(sessionCookie(accessCookieName, pair.AccessToken, int(s.users.AccessTokenTTL().Seconds())))
	c.SetCookie(sessionCookie(refreshCookieName, pair.RefreshToken, int(s.users.RefreshTokenTTL().Seconds())))
}

func clearSessionCookies(c echo.Context) {
	c.SetCookie(sessionCookie(accessCookieName, "", -1))
	c.SetCookie(sessionCookie(refreshCookieName, "", -1))
}
