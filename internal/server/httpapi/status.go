package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"blogserver/internal/common"
)

// httpStatus maps service sentinels to response codes: 400 bad input,
// 401 authentication, 403 authorization (including a superseded refresh
// token), 404 absent entity, 409 duplicate, 500 otherwise.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrTokenMissing),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrTokenMalformed),
		errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden),
		errors.Is(err, common.ErrRefreshTokenMismatch):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError converts a service error into a terse JSON body. Unexpected
// errors are not echoed back to the client.
func respondError(c echo.Context, err error) error {
	status := httpStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	return c.JSON(status, echo.Map{"message": msg})
}
