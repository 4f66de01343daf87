package auth

import (
	"time"
)

// AssertionLifetime is the validity period of a signed assertion.
const AssertionLifetime = time.Hour

// JWTBearerGrantType is the OAuth2 grant type for exchanging signed assertions.
const JWTBearerGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// SignedAssertion is a time-bounded, signed statement of identity and requested scope.
//
// Assertions are built fresh for every exchange and never reused.
type SignedAssertion struct {
	Payload string

	IssuedAt  time.Time
	ExpiresAt time.Time
}

// BearerToken is a short-lived credential presented to the spreadsheet API.
type BearerToken struct {
	AccessToken string
	TokenType   string

	ExpiresIn time.Duration
	IssuedAt  time.Time
}

// IsZero reports whether the token carries no access token.
func (t BearerToken) IsZero() bool {
	return t.AccessToken == ""
}
