package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/docker/libtrust"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/sheetlinks/sheetlinks/auth"
)

// claims is the claim set of a service account assertion.
//
// The audience is a single string: token endpoints reject an array.
type claims struct {
	Issuer    string           `json:"iss"`
	Scope     string           `json:"scope"`
	Audience  string           `json:"aud"`
	ExpiresAt *jwt.NumericDate `json:"exp"`
	IssuedAt  *jwt.NumericDate `json:"iat"`
}

// Valid implements jwt.Claims.
func (c claims) Valid() error {
	if c.Issuer == "" {
		return errors.New("assertion: issuer is required")
	}

	if c.ExpiresAt == nil || c.IssuedAt == nil {
		return errors.New("assertion: exp and iat are required")
	}

	if !c.ExpiresAt.After(c.IssuedAt.Time) {
		return errors.New("assertion: exp must be after iat")
	}

	return nil
}

// AssertionBuilder builds RS256 signed assertions for service credentials
// according to the [JWT Bearer Token Grant] profile.
//
// [JWT Bearer Token Grant]: https://datatracker.ietf.org/doc/html/rfc7523
type AssertionBuilder struct {
	lifetime time.Duration

	clock  Clock
	logger *zap.Logger
}

// NewAssertionBuilder returns a new AssertionBuilder.
func NewAssertionBuilder(opts ...AssertionBuilderOption) AssertionBuilder {
	b := AssertionBuilder{
		lifetime: auth.AssertionLifetime,
	}

	for _, opt := range opts {
		opt.applyAssertionBuilder(&b)
	}

	if b.clock == nil {
		b.clock = clockwork.NewRealClock()
	}

	if b.logger == nil {
		b.logger = zap.NewNop()
	}

	return b
}

// BuildAssertion implements auth.AssertionBuilder.
func (b AssertionBuilder) BuildAssertion(credential auth.ServiceCredential, scope string) (auth.SignedAssertion, error) {
	signingKey, err := parseSigningKey(credential.PrivateKey)
	if err != nil {
		return auth.SignedAssertion{}, err
	}

	now := b.clock.Now()
	expiresAt := now.Add(b.lifetime)

	claims := claims{
		Issuer:    credential.Identity(),
		Scope:     scope,
		Audience:  credential.Endpoint(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	signedToken, err := sign(signingKey, claims)
	if err != nil {
		return auth.SignedAssertion{}, err
	}

	b.logger.Debug("assertion signed",
		zap.String("issuer", claims.Issuer),
		zap.String("scope", scope),
		zap.String("key_id", signingKey.KeyID()),
	)

	return auth.SignedAssertion{
		Payload:   signedToken,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// parseSigningKey parses a PEM encoded private key.
//
// RSA keys are accepted in PKCS #1 and PKCS #8 form. Other key types libtrust
// understands (e.g. EC) parse as well and are rejected when signing.
func parseSigningKey(privateKeyPEM string) (libtrust.PrivateKey, error) {
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		signingKey, libtrustErr := libtrust.UnmarshalPrivateKeyPEM([]byte(privateKeyPEM))
		if libtrustErr != nil {
			return nil, &auth.CredentialError{Err: fmt.Errorf("parsing private key: %w", err)}
		}

		return signingKey, nil
	}

	signingKey, err := libtrust.FromCryptoPrivateKey(privateKey)
	if err != nil {
		return nil, &auth.CredentialError{Err: err}
	}

	return signingKey, nil
}

func sign(signingKey libtrust.PrivateKey, claims claims) (string, error) {
	alg, err := detectSigningMethod(signingKey)
	if err != nil {
		return "", &auth.SigningError{Err: err}
	}

	token := jwt.NewWithClaims(alg, claims)

	signedToken, err := token.SignedString(signingKey.CryptoPrivateKey())
	if err != nil {
		return "", &auth.SigningError{Err: err}
	}

	return signedToken, nil
}

// detectSigningMethod returns the signing method for a key.
// Token endpoints only accept RS256 assertions.
func detectSigningMethod(signingKey libtrust.PrivateKey) (jwt.SigningMethod, error) {
	switch signingKey.KeyType() {
	case "RSA":
		return jwt.SigningMethodRS256, nil
	default:
		return nil, fmt.Errorf("unsupported signing key type %q", signingKey.KeyType())
	}
}
