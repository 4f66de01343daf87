package auth

import (
	"context"

	"go.uber.org/zap"
)

// AssertionBuilder builds signed assertions for a service credential.
//
// It returns a CredentialError if the private key cannot be parsed
// and a SigningError if the assertion cannot be signed.
type AssertionBuilder interface {
	BuildAssertion(credential ServiceCredential, scope string) (SignedAssertion, error)
}

// TokenExchanger exchanges a signed assertion for a bearer token.
//
// It returns an UpstreamAuthError if the token endpoint rejects the assertion.
type TokenExchanger interface {
	Exchange(ctx context.Context, assertion SignedAssertion, tokenEndpoint string) (BearerToken, error)
}

// Authenticator obtains a bearer token for a service credential and scope.
type Authenticator interface {
	Authenticate(ctx context.Context, credential ServiceCredential, scope string) (BearerToken, error)
}

// ServiceAccountAuthenticator authenticates a service credential
// by exchanging a freshly signed assertion at the credential's token endpoint.
//
// Tokens are not cached: every call signs and exchanges a new assertion.
type ServiceAccountAuthenticator struct {
	Builder   AssertionBuilder
	Exchanger TokenExchanger

	Logger *zap.Logger
}

// Authenticate implements the Authenticator interface.
func (a ServiceAccountAuthenticator) Authenticate(ctx context.Context, credential ServiceCredential, scope string) (BearerToken, error) {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := credential.Validate(); err != nil {
		return BearerToken{}, err
	}

	assertion, err := a.Builder.BuildAssertion(credential, scope)
	if err != nil {
		return BearerToken{}, err
	}

	token, err := a.Exchanger.Exchange(ctx, assertion, credential.Endpoint())
	if err != nil {
		return BearerToken{}, err
	}

	logger.Debug("service account authenticated",
		zap.String("identity", credential.Identity()),
		zap.String("scope", scope),
		zap.Duration("expires_in", token.ExpiresIn),
	)

	return token, nil
}
