// Package auth implements the credential primitives of the session core:
// bcrypt password hashing and HS256-signed access/refresh tokens.
package auth

import (
	"errors"
	"time"

	"blogserver/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the fixed identity-claims structure carried by every
// authenticated request: {email, username}, nothing more.
type Identity struct {
	Email    string
	Username string
}

type accessClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	Username string `json:"username"`
}

type refreshClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// GenerateAccessToken signs a short-lived token carrying the full identity.
func GenerateAccessToken(identity Identity, secret []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email:    identity.Email,
		Username: identity.Username,
	})
	return token.SignedString(secret)
}

// GenerateRefreshToken signs a long-lived token carrying only the email.
// It must be signed with a secret distinct from the access token secret.
// The jti claim makes every issued token unique, so rotation always replaces
// the stored value with a different string.
func GenerateRefreshToken(email string, secret []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
		Email: email,
	})
	return token.SignedString(secret)
}

// ParseAccessToken verifies signature and expiry, returning the embedded
// identity. Failures map to the token sentinels in common.
func ParseAccessToken(tokenString string, secret []byte) (*Identity, error) {
	claims := &accessClaims{}
	if err := parseToken(tokenString, secret, claims); err != nil {
		return nil, err
	}
	return &Identity{Email: claims.Email, Username: claims.Username}, nil
}

// ParseRefreshToken verifies signature and expiry, returning the email claim.
func ParseRefreshToken(tokenString string, secret []byte) (string, error) {
	claims := &refreshClaims{}
	if err := parseToken(tokenString, secret, claims); err != nil {
		return "", err
	}
	return claims.Email, nil
}

func parseToken(tokenString string, secret []byte, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return common.ErrTokenMalformed
		default:
			return common.ErrInvalidToken
		}
	}
	if !token.Valid {
		return common.ErrInvalidToken
	}
	return nil
}
