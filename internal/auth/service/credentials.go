package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/siteadmin/internal/auth/store"
)

// ErrNoCredential means a source has nothing for the principal and the next
// source should be asked.
var ErrNoCredential = errors.New("no credential")

// CredentialSource yields the stored password hash for a principal.
type CredentialSource interface {
	Name() string
	Lookup(ctx context.Context, principal string) (string, error)
}

// StoreCredentialSource reads the admin_credentials row written by
// `siteadmin set-password`.
type StoreCredentialSource struct {
	Store store.Store
}

func (StoreCredentialSource) Name() string { return "record_store" }

func (s StoreCredentialSource) Lookup(ctx context.Context, principal string) (string, error) {
	c, err := s.Store.Credentials().GetCredential(ctx, principal)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("%w: read credential: %v", ErrStoreUnavailable, err)
	}
	if c.PasswordHash == "" {
		return "", ErrNoCredential
	}
	return c.PasswordHash, nil
}

// StaticCredentialSource is the ADMIN_PASSWORD_HASH value from config.
type StaticCredentialSource struct {
	Hash string
}

func (StaticCredentialSource) Name() string { return "static_config" }

func (s StaticCredentialSource) Lookup(context.Context, string) (string, error) {
	if s.Hash == "" {
		return "", ErrNoCredential
	}
	return s.Hash, nil
}

// CredentialChain asks each source in order and returns the first hash
// found. Only ErrNoCredential moves on to the next source; any other error
// stops the lookup.
type CredentialChain []CredentialSource

// Resolve returns the hash and the name of the source that supplied it. When
// no source has a credential the error wraps ErrConfiguration.
func (c CredentialChain) Resolve(ctx context.Context, principal string) (hash, source string, err error) {
	for _, src := range c {
		hash, err := src.Lookup(ctx, principal)
		if errors.Is(err, ErrNoCredential) {
			continue
		}
		if err != nil {
			return "", src.Name(), err
		}
		return hash, src.Name(), nil
	}
	return "", "", fmt.Errorf("%w: no admin credential configured", ErrConfiguration)
}
