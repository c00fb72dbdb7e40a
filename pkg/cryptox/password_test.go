package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Tests run at the minimum cost so the suite stays fast.
const testCost = MinCost

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, testCost)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$2a$10$"), "unexpected hash %q", hash)
			require.Equal(t, testCost, HashCost(hash))
			require.True(t, VerifyPassword(tt.password, hash))
		})
	}
}

func TestHashPassword_Rejects(t *testing.T) {
	_, err := HashPassword("secret", MinCost-1)
	require.ErrorIs(t, err, ErrCostTooLow)

	_, err = HashPassword("", DefaultCost)
	require.ErrorIs(t, err, ErrEmptyPassword)

	_, err = HashPassword("secret", bcrypt.MaxCost+1)
	require.Error(t, err)
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := HashPassword("samepassword", testCost)
	require.NoError(t, err)
	hash2, err := HashPassword("samepassword", testCost)
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
	require.True(t, VerifyPassword("samepassword", hash1))
	require.True(t, VerifyPassword("samepassword", hash2))
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("correct-password", testCost)
	require.NoError(t, err)

	for _, wrong := range []string{
		"wrong-password",
		"Correct-Password",
		"correct-password ",
		"correct-passwor",
		"",
	} {
		require.False(t, VerifyPassword(wrong, hash), "password %q", wrong)
	}
}

func TestVerifyPassword_LegacyPrefix(t *testing.T) {
	hash, err := HashPassword("correct", testCost)
	require.NoError(t, err)

	legacy := "$2y$" + strings.TrimPrefix(hash, "$2a$")
	require.Equal(t, hash, NormalizeHash(legacy))
	require.True(t, VerifyPassword("correct", legacy))

	// Hashes pasted into env files tend to pick up a trailing newline.
	require.True(t, VerifyPassword("correct", hash+"\n"))
	require.True(t, VerifyPassword("correct", "  "+legacy+"  "))
}

func TestVerifyPassword_MalformedHashIsMismatch(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty hash", ""},
		{"plain text", "correct"},
		{"truncated bcrypt", "$2a$10$abc"},
		{"bad bcrypt cost", "$2a$99$" + strings.Repeat("a", 53)},
		{"argon missing parts", "$argon2id$v=19$m=19456"},
		{"argon bad params", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"argon zero parallelism", "$argon2id$v=19$m=19456,t=2,p=0$c2FsdA$aGFzaA"},
		{"argon huge memory", "$argon2id$v=19$m=99999999,t=2,p=1$c2FsdA$aGFzaA"},
		{"argon bad salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA"},
		{"argon wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"unknown scheme", "$scrypt$ln=15,r=8,p=1$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				require.False(t, VerifyPassword("correct", tt.hash))
			})
		})
	}
}

func TestVerifyPassword_Argon2id(t *testing.T) {
	salt := make([]byte, 16)
	_, err := rand.Read(salt)
	require.NoError(t, err)

	key := argon2.IDKey([]byte("legacy-password"), salt, 2, 19*1024, 1, 32)
	hash := fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		19*1024, 2, 1,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	require.True(t, VerifyPassword("legacy-password", hash))
	require.False(t, VerifyPassword("legacy-passwore", hash))
	require.Equal(t, 0, HashCost(hash))
}

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]bool, 50)
	for range 50 {
		password, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, password, 20)
		require.NotContains(t, seen, password, "duplicate password generated")
		seen[password] = true

		for _, char := range password {
			valid := (char >= 'a' && char <= 'z') ||
				(char >= 'A' && char <= 'Z') ||
				(char >= '0' && char <= '9')
			require.True(t, valid, "password should only contain alphanumeric characters")
		}
	}
}
