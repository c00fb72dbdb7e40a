package jwtx

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
	ErrNoSecret   = errors.New("jwtx: signing secret not configured")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrWrongType    = errors.New("jwtx: unexpected token type")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// Verify parses token, checks its HS256 signature under the codec secret and
// validates exp (and iss when the codec has an issuer). The returned error is
// always one of the package sentinels.
func (c *HS256Codec) Verify(token string) (Claims, error) {
	if len(c.secret) == 0 {
		return Claims{}, ErrNoSecret
	}

	// Header, claims, signature. Anything else is not a compact JWS.
	if strings.Count(token, ".") != 2 {
		return Claims{}, ErrMalformed
	}

	// exp is compared in whole seconds and is inclusive: the token is still
	// good during the second it expires in. The library treats exp as
	// exclusive, hence the one second of leeway.
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return c.now().Truncate(time.Second) }),
		jwt.WithLeeway(time.Second),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	var claims Claims
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	return claims, nil
}

// mapParseError folds the jwt library's error tree into our sentinels. The
// library checks the signature before any claim, so a forged token never
// reports as expired.
func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	default:
		return ErrInvalidClaim
	}
}

// VerifyAt is a convenience for one-off checks against an explicit clock.
func VerifyAt(token string, secret []byte, now time.Time) (Claims, error) {
	return NewHS256(secret, "", WithClock(func() time.Time { return now })).Verify(token)
}
