package users

import (
	"context"

	"blogserver/internal/server/models"
)

// Repository is the credential store: persisted user records plus the
// stored-value refresh token used by the refresh flow.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// SetRefreshToken unconditionally replaces the stored refresh token,
	// used at login.
	SetRefreshToken(ctx context.Context, email, token string) error

	// RotateRefreshToken replaces the stored refresh token only when the
	// current value still equals oldToken. A superseded token loses the
	// compare and yields common.ErrRefreshTokenMismatch.
	RotateRefreshToken(ctx context.Context, email, oldToken, newToken string) error

	// ClearRefreshToken unsets the stored refresh token. Idempotent.
	ClearRefreshToken(ctx context.Context, email string) error
}
