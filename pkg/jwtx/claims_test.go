package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/siteadmin/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "siteadmin",
		},
	}

	t.Run("matching issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer("siteadmin"))
	})

	t.Run("empty expected issuer", func(t *testing.T) {
		require.NoError(t, c.ValidateIssuer(""))
	})

	t.Run("mismatched issuer", func(t *testing.T) {
		err := c.ValidateIssuer("other-service")
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})
}

func TestValidateType(t *testing.T) {
	c := jwtx.NewClaims("admin", jwtx.NewJTI(), jwtx.TypeRefresh)

	require.NoError(t, c.ValidateType(jwtx.TypeRefresh))
	require.ErrorIs(t, c.ValidateType(jwtx.TypeAccess), jwtx.ErrWrongType)
}

func TestValidateExpiry(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name    string
		exp     time.Time
		nbf     time.Time
		wantErr error
	}{
		{"valid", now.Add(time.Minute), time.Time{}, nil},
		{"expired", now.Add(-time.Second), time.Time{}, jwtx.ErrExpired},
		{"expires exactly now", now, time.Time{}, nil},
		{"not yet valid", now.Add(time.Hour), now.Add(time.Minute), jwtx.ErrNotYetValid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := jwtx.Claims{}
			c.ExpiresAt = jwt.NewNumericDate(tt.exp)
			if !tt.nbf.IsZero() {
				c.NotBefore = jwt.NewNumericDate(tt.nbf)
			}

			err := c.ValidateExpiry(now)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewJTIUnique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for range 100 {
		jti := jwtx.NewJTI()
		require.NotEmpty(t, jti)
		_, dup := seen[jti]
		require.False(t, dup)
		seen[jti] = struct{}{}
	}
}
