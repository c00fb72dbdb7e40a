package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Codec issues and verifies HMAC-SHA256 signed tokens under a single
// shared secret. It is stateless and safe for concurrent use.
type HS256Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// Option configures an HS256Codec.
type Option func(*HS256Codec)

// WithClock overrides the time source used for iat/exp stamping and expiry
// checks. Tests use this to move through token lifetimes.
func WithClock(now func() time.Time) Option {
	return func(c *HS256Codec) { c.now = now }
}

// NewHS256 returns a codec for secret. An empty issuer disables the iss check.
// An empty secret is allowed here; every Issue/Verify then fails with
// ErrNoSecret so misconfiguration surfaces per request.
func NewHS256(secret []byte, issuer string, opts ...Option) *HS256Codec {
	c := &HS256Codec{
		secret: secret,
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the codec has a secret to sign with.
func (c *HS256Codec) Configured() bool { return len(c.secret) > 0 }

// Issue stamps iat=now and exp=now+ttl onto claims and signs them. The issuer
// claim is filled from the codec when the caller left it empty.
func (c *HS256Codec) Issue(claims Claims, ttl time.Duration) (string, error) {
	if len(c.secret) == 0 {
		return "", ErrNoSecret
	}

	now := c.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if claims.Issuer == "" {
		claims.Issuer = c.issuer
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}
