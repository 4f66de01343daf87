package authn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sheetlinks/sheetlinks/auth"
)

func TestHashedKeyAuthenticator(t *testing.T) {
	const key = "s3cr3t"

	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	require.NoError(t, err)

	authenticator := NewHashedKeyAuthenticator(string(hash))

	t.Run("OK", func(t *testing.T) {
		err := authenticator.Authenticate(context.Background(), key)

		assert.NoError(t, err)
	})

	t.Run("WrongKey", func(t *testing.T) {
		err := authenticator.Authenticate(context.Background(), "guess")

		assert.Equal(t, auth.ErrAuthenticationFailed, err)
	})

	t.Run("MissingKey", func(t *testing.T) {
		err := authenticator.Authenticate(context.Background(), "")

		assert.Equal(t, auth.ErrAuthenticationFailed, err)
	})

	t.Run("InvalidHash", func(t *testing.T) {
		err := NewHashedKeyAuthenticator("not a hash").Authenticate(context.Background(), key)

		assert.Equal(t, auth.ErrAuthenticationFailed, err)
	})
}
