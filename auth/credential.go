package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
)

// DefaultTokenEndpoint is the endpoint signed assertions are exchanged at
// when the credential does not name one.
const DefaultTokenEndpoint = google.JWTTokenURL

// ServiceCredential is a service account key as downloaded from the cloud console.
//
// Only the fields needed to sign assertions are kept.
type ServiceCredential struct {
	Type          string `json:"type,omitempty"`
	ProjectID     string `json:"project_id,omitempty"`
	PrivateKeyID  string `json:"private_key_id,omitempty"`
	PrivateKey    string `json:"private_key"`
	ClientEmail   string `json:"client_email"`
	TokenEndpoint string `json:"token_uri,omitempty"`
}

// Identity returns the identity asserted on behalf of the credential.
func (c ServiceCredential) Identity() string {
	return c.ClientEmail
}

// Endpoint returns the token endpoint of the credential.
func (c ServiceCredential) Endpoint() string {
	if c.TokenEndpoint == "" {
		return DefaultTokenEndpoint
	}

	return c.TokenEndpoint
}

// Validate checks that the credential can be used to sign assertions.
func (c ServiceCredential) Validate() error {
	if c.ClientEmail == "" {
		return &CredentialError{Err: errors.New("client_email is required")}
	}

	if c.PrivateKey == "" {
		return &CredentialError{Err: errors.New("private_key is required")}
	}

	return nil
}

// ParseServiceCredential parses a JSON encoded service credential.
//
// Some configuration systems store JSON documents as JSON strings, so a
// doubly-encoded document is accepted as well: a quoted document is unquoted,
// and as a last resort a single layer of surrounding quotes is stripped,
// escaped quotes are restored and escaped newlines between fields are turned
// into real ones. Escaped newlines left in the private key are turned into
// real ones as well.
func ParseServiceCredential(raw string) (ServiceCredential, error) {
	var credential ServiceCredential

	err := json.Unmarshal([]byte(raw), &credential)
	if err != nil {
		credential, err = parseDoublyEncoded(raw, err)
		if err != nil {
			return ServiceCredential{}, err
		}
	}

	if !strings.Contains(credential.PrivateKey, "\n") {
		credential.PrivateKey = strings.ReplaceAll(credential.PrivateKey, `\n`, "\n")
	}

	if err := credential.Validate(); err != nil {
		return ServiceCredential{}, err
	}

	return credential, nil
}

func parseDoublyEncoded(raw string, cause error) (ServiceCredential, error) {
	var credential ServiceCredential

	cleaned := strings.TrimSpace(raw)

	var inner string
	if json.Unmarshal([]byte(cleaned), &inner) == nil {
		if json.Unmarshal([]byte(inner), &credential) == nil {
			return credential, nil
		}
	}

	if len(cleaned) >= 2 && strings.HasPrefix(cleaned, `"`) && strings.HasSuffix(cleaned, `"`) {
		cleaned = cleaned[1 : len(cleaned)-1]
	}

	cleaned = strings.ReplaceAll(cleaned, `\"`, `"`)

	if json.Unmarshal([]byte(cleaned), &credential) == nil {
		return credential, nil
	}

	if json.Unmarshal([]byte(unescapeNewlines(cleaned)), &credential) == nil {
		return credential, nil
	}

	return ServiceCredential{}, &CredentialError{Err: fmt.Errorf("parsing service credential: %w", cause)}
}

// unescapeNewlines turns literal "\n" sequences between JSON tokens into newlines.
// Escapes inside string values are left to the JSON decoder.
func unescapeNewlines(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case inString && c == '\\' && i+1 < len(s):
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++

			continue
		case c == '"':
			inString = !inString
		case !inString && c == '\\' && i+1 < len(s) && s[i+1] == 'n':
			b.WriteByte('\n')
			i++

			continue
		}

		b.WriteByte(c)
	}

	return b.String()
}

// DecodeServiceCredential decodes a base64 encoded JSON service credential.
func DecodeServiceCredential(encoded string) (ServiceCredential, error) {
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return ServiceCredential{}, &CredentialError{Err: fmt.Errorf("decoding base64 service credential: %w", err)}
	}

	return ParseServiceCredential(string(decoded))
}
