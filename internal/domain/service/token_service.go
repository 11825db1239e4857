package service

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned when a token's expiration instant has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMalformed is returned when a token's structure or signature is invalid.
	ErrTokenMalformed = errors.New("token malformed")
)

// Claims defines the custom claims embedded in identity tokens.
type Claims struct {
	UserID uuid.UUID
	jwt.RegisteredClaims
}

// TokenService defines the interface for issuing and verifying signed,
// time-bound identity tokens. Tokens are self-contained; the server keeps no
// session state and validity is determined purely by signature and expiry.
type TokenService interface {
	// Generate creates a signed token embedding the user ID and an absolute
	// expiration instant (issue time plus the configured TTL).
	Generate(userID uuid.UUID) (string, error)

	// Validate checks signature integrity and expiration, returning the
	// embedded claims. Expired tokens and structurally invalid or
	// wrong-secret tokens fail with distinct sentinel errors.
	Validate(tokenString string) (*Claims, error)
}
