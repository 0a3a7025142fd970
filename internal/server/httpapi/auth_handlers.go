package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *HTTPServer) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	if _, err := s.users.Register(c.Request().Context(), req.Username, req.Email, req.Password); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "registered"})
}

func (s *HTTPServer) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}

	pair, identity, err := s.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	s.setSessionCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"username": identity.Username,
		"email":    identity.Email,
	})
}

func (s *HTTPServer) currentUser(c echo.Context) error {
	identity, ok := identityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token missing"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"username": identity.Username,
		"email":    identity.Email,
	})
}

// refresh exchanges the refresh cookie for a fresh pair, rotating both
// cookies. A superseded token comes back as 403 so the frontend drops the
// session instead of retrying.
func (s *HTTPServer) refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token missing"})
	}

	pair, identity, err := s.users.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		clearSessionCookies(c)
		return respondError(c, err)
	}

	s.setSessionCookies(c, pair)
	return c.JSON(http.StatusOK, echo.Map{
		"success":  true,
		"username": identity.Username,
		"email":    identity.Email,
	})
}

// logout is best effort: the cookies are cleared no matter what, and a
// stale or missing refresh token is not an error.
func (s *HTTPServer) logout(c echo.Context) error {
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		if err := s.users.Logout(c.Request().Context(), cookie.Value); err != nil {
			s.logger.Warn(c.Request().Context(), "Error clearing stored refresh token", "error", err)
		}
	}

	clearSessionCookies(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "success"})
}
