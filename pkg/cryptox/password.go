package cryptox

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinCost is the lowest bcrypt work factor HashPassword accepts.
	MinCost = 10
	// DefaultCost matches the work factor the admin hash tooling has always used.
	DefaultCost = 12
)

var (
	ErrCostTooLow    = fmt.Errorf("cryptox: bcrypt cost must be at least %d", MinCost)
	ErrEmptyPassword = errors.New("cryptox: empty password")
)

// legacyPrefixes maps bcrypt revision markers written by other libraries to
// the marker this package emits. The underlying algorithm is identical.
var legacyPrefixes = map[string]string{
	"$2y$": "$2a$",
}

// HashPassword returns a bcrypt hash of password at the given cost. Costs
// above bcrypt.MaxCost are rejected by the bcrypt package itself.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if cost < MinCost {
		return "", ErrCostTooLow
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("cryptox: hash password: %w", err)
	}
	return string(hash), nil
}

// NormalizeHash trims surrounding whitespace (hashes often arrive through
// env files) and rewrites legacy bcrypt prefixes.
func NormalizeHash(encodedHash string) string {
	encodedHash = strings.TrimSpace(encodedHash)
	for legacy, canonical := range legacyPrefixes {
		if strings.HasPrefix(encodedHash, legacy) {
			return canonical + encodedHash[len(legacy):]
		}
	}
	return encodedHash
}

// VerifyPassword reports whether password matches encodedHash. Both bcrypt
// and PHC argon2id hashes are understood. A malformed hash, an unknown scheme
// or an empty input is a mismatch, never an error.
func VerifyPassword(password, encodedHash string) bool {
	if password == "" {
		return false
	}

	encodedHash = NormalizeHash(encodedHash)
	switch {
	case strings.HasPrefix(encodedHash, "$argon2id$"):
		return verifyArgon2id(password, encodedHash) == nil
	case strings.HasPrefix(encodedHash, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
	default:
		return false
	}
}

// HashCost returns the work factor of a bcrypt hash, or 0 if it is not one.
func HashCost(encodedHash string) int {
	cost, err := bcrypt.Cost([]byte(NormalizeHash(encodedHash)))
	if err != nil {
		return 0
	}
	return cost
}

func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 20
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
