package domain

import "time"

// Credential is the stored password hash for the admin principal.
type Credential struct {
	Principal    string
	PasswordHash string // bcrypt, or argon2id for rows carried over from older installs
	UpdatedAt    time.Time
}
