// Package common defines shared sentinel errors used across the service,
// repository, and HTTP layers. Callers should use errors.Is to match them.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Validation errors (malformed or missing input).
	ErrValidation = errors.New("validation error")

	// Service-level errors (generic/internal flow control).
	ErrInternal  = errors.New("internal error")
	ErrForbidden = errors.New("forbidden")

	// Credential errors. Login failures collapse to ErrInvalidCredentials so
	// the response never reveals whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token lifecycle errors.
	ErrTokenMissing   = errors.New("token missing")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrInvalidToken   = errors.New("invalid token")

	// ErrRefreshTokenMismatch means a refresh token verified but no longer
	// matches the stored value for the user, i.e. it has been rotated away.
	ErrRefreshTokenMismatch = errors.New("refresh token mismatch")
)
