// Package services contains the server-side business logic: the session
// lifecycle (registration, login, refresh rotation, logout) and post CRUD
// with ownership checks.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"blogserver/internal/common"
	"blogserver/internal/dbx"
	"blogserver/internal/server/auth"
	"blogserver/internal/server/config"
	"blogserver/internal/server/models"
	"blogserver/internal/server/repositories/repomanager"
)

// minPasswordLength is the registration password policy.
const minPasswordLength = 6

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserService handles registration, login, refresh-token rotation, and logout.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	accessSecret                 []byte
	refreshSecret                []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		accessSecret:                 []byte(cfg.AccessTokenSecret),
		refreshSecret:                []byte(cfg.RefreshTokenSecret),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates a new user with a bcrypt password hash. A duplicate email
// yields common.ErrAlreadyExists; no token is issued on registration.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" {
		return nil, fmt.Errorf("%w: username and email are required", common.ErrValidation)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email", common.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Username: username, Email: email, PasswordHash: hash}
	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the email/password pair and, on success, issues a token
// pair and persists the refresh token as the user's single active one.
// Unknown email and wrong password both yield common.ErrInvalidCredentials
// so the caller cannot tell the cases apart.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, *auth.Identity, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, common.ErrInvalidCredentials
		}
		return nil, nil, common.ErrInternal
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, nil, common.ErrInvalidCredentials
	}

	identity := auth.Identity{Email: user.Email, Username: user.Username}

	pair, err := s.generateTokenPair(identity)
	if err != nil {
		return nil, nil, common.ErrInternal
	}

	if err := repo.SetRefreshToken(ctx, user.Email, pair.RefreshToken); err != nil {
		return nil, nil, common.ErrInternal
	}

	return pair, &identity, nil
}

// Refresh exchanges a valid refresh token for a new token pair, rotating the
// stored refresh token.
//
// The flow follows the refresh state machine: a token failing signature or
// expiry checks yields a token sentinel; a token that verifies but no longer
// matches the stored value yields common.ErrRefreshTokenMismatch. The rotate
// step is an atomic conditional update keyed on the presented token, so two
// concurrent refreshes on the same token produce exactly one winner.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *auth.Identity, error) {
	email, err := auth.ParseRefreshToken(refreshToken, s.refreshSecret)
	if err != nil {
		return nil, nil, err
	}

	var pair *TokenPair
	var identity auth.Identity

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				// The subject vanished since the token was minted; treat it
				// like a superseded token.
				return common.ErrRefreshTokenMismatch
			}
			return err
		}

		if !user.RefreshToken.Valid || user.RefreshToken.String != refreshToken {
			return common.ErrRefreshTokenMismatch
		}

		identity = auth.Identity{Email: user.Email, Username: user.Username}

		p, err := s.generateTokenPair(identity)
		if err != nil {
			return err
		}

		if err := repo.RotateRefreshToken(ctx, user.Email, refreshToken, p.RefreshToken); err != nil {
			return err
		}

		pair = p
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrRefreshTokenMismatch) {
			return nil, nil, common.ErrRefreshTokenMismatch
		}
		return nil, nil, fmt.Errorf("error rotating refresh token: %w", err)
	}

	return pair, &identity, nil
}

// Logout unsets the stored refresh token for the user identified by the
// presented refresh token. It is idempotent and deliberately forgiving: an
// absent, expired, or foreign token simply results in nothing to clear.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	email, err := auth.ParseRefreshToken(refreshToken, s.refreshSecret)
	if err != nil {
		return nil
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.ClearRefreshToken(ctx, email); err != nil {
		return common.ErrInternal
	}
	return nil
}

func (s *UserService) generateTokenPair(identity auth.Identity) (*TokenPair, error) {
	accessToken, err := auth.GenerateAccessToken(identity, s.accessSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, err
	}

	refreshToken, err := auth.GenerateRefreshToken(identity.Email, s.refreshSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// AccessTokenTTL exposes the configured access token lifetime, used by the
// HTTP layer for cookie expiry.
func (s *UserService) AccessTokenTTL() time.Duration {
	return s.accessTokenValidityDuration
}

// RefreshTokenTTL exposes the configured refresh token lifetime.
func (s *UserService) RefreshTokenTTL() time.Duration {
	return s.refreshTokenValidityDuration
}
