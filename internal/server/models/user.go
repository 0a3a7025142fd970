package models

import (
	"database/sql"
	"time"
)

// User is a persisted credential record. RefreshToken holds the single
// currently-valid refresh token and is NULL while no session is active.
// PasswordHash is immutable after registration.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	RefreshToken sql.NullString
	CreatedAt    time.Time
}
