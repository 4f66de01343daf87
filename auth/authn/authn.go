// Package authn authenticates the callers of the link functions.
package authn

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/sheetlinks/sheetlinks/auth"
)

// HashedKeyAuthenticator authenticates callers presenting a shared key
// against its bcrypt hash.
type HashedKeyAuthenticator struct {
	hash []byte
}

// NewHashedKeyAuthenticator returns a new HashedKeyAuthenticator.
func NewHashedKeyAuthenticator(hash string) HashedKeyAuthenticator {
	return HashedKeyAuthenticator{
		hash: []byte(hash),
	}
}

// Authenticate returns auth.ErrAuthenticationFailed unless key matches the hash.
func (a HashedKeyAuthenticator) Authenticate(_ context.Context, key string) error {
	if key == "" {
		// timing attack paranoia
		bcrypt.CompareHashAndPassword(a.hash, []byte{})

		return auth.ErrAuthenticationFailed
	}

	err := bcrypt.CompareHashAndPassword(a.hash, []byte(key))
	if err != nil {
		return auth.ErrAuthenticationFailed
	}

	return nil
}
