package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Supported TOKEN_FORMAT values.
const (
	FormatJWT    = "jwt"
	FormatPaseto = "paseto"
)

// TokenClaims represents the claims carried by an access token
type TokenClaims struct {
	ID        string    `json:"jti"`
	UserID    int64     `json:"sub"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// TokenService defines the interface for token creation and validation.
// Implementations include JWTService (HS256) and PasetoService (PASETO v4.local).
type TokenService interface {
	CreateToken(userID int64, email string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// NewTokenService builds the TokenService for the configured format.
func NewTokenService(format string, secret []byte) (TokenService, error) {
	switch format {
	case FormatJWT, "":
		return NewJWTService(secret)
	case FormatPaseto:
		return NewPasetoService(secret)
	default:
		return nil, fmt.Errorf("unsupported token format %q", format)
	}
}

// parseSubject turns a sub claim back into a user id.
func parseSubject(sub string) (int64, error) {
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: malformed subject %q", ErrInvalidToken, sub)
	}
	return userID, nil
}
