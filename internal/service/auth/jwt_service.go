package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JWTService verifies the bearer tokens that identify a user.
// Tokens are normally issued by an external identity provider sharing the
// HMAC secret; GenerateToken exists for development and the token command.
type JWTService interface {
	// GenerateToken creates a signed access token for the user.
	// Returns the token string or an error if signing fails.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken validates the token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, ErrInvalidSubject or
	// ErrInvalidToken when validation fails.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the verified contents of an access token.
type Claims struct {
	// UserID is parsed from the subject claim.
	UserID uuid.UUID `json:"uid,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
