package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default token TTL constants for the admin session.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Token types carried in the "type" claim. Access and refresh tokens minted
// together share the same jti and differ only by type and lifetime.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the claim set signed into every token. Timing claims (iat, exp)
// are stamped by the codec when the token is issued.
type Claims struct {
	jwt.RegisteredClaims

	// Type is either TypeAccess or TypeRefresh.
	Type string `json:"type,omitempty"`
}

// NewClaims builds an unsigned claim set for subject with the given jti and
// token type.
func NewClaims(subject, jti, typ string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: subject,
			ID:      jti,
		},
		Type: typ,
	}
}

// NewJTI returns a fresh random identifier for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateType rejects tokens minted for a different purpose, e.g. a refresh
// token presented as an access token.
func (c *Claims) ValidateType(expected string) error {
	if c.Type != expected {
		return ErrWrongType
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf
// relative to now.
func (c *Claims) ValidateExpiry(now time.Time) error {
	// exp is inclusive at second resolution, matching Verify
	if c.ExpiresAt != nil && now.Truncate(time.Second).After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
