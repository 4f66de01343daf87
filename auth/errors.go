package auth

import (
	"errors"
	"fmt"
)

// CredentialError is returned when a service credential or its private key cannot be parsed.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("invalid service credential: %v", e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// SigningError is returned when an assertion cannot be signed with an otherwise parsable key.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing assertion: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// UpstreamAuthError is returned when the token endpoint rejects an assertion.
//
// The upstream status and body are kept verbatim for diagnosability.
type UpstreamAuthError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamAuthError) Error() string {
	return fmt.Sprintf("token exchange failed with HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the status code returned by the token endpoint.
func (e *UpstreamAuthError) HTTPStatus() int {
	return e.StatusCode
}

// ResponseBody returns the body returned by the token endpoint.
func (e *UpstreamAuthError) ResponseBody() string {
	return e.Body
}

// ErrAuthenticationFailed is returned when a caller presents a missing or wrong key.
var ErrAuthenticationFailed = errors.New("authentication failed")
