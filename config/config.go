package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/sheetlinks/sheetlinks/auth"
	"github.com/sheetlinks/sheetlinks/links"
)

// Config collects the configuration of a single function invocation.
//
// It is read from the environment on every invocation and passed down by value.
type Config struct {
	ServiceCredentialJSON       string `mapstructure:"SERVICE_CREDENTIAL_JSON"`
	ServiceCredentialJSONBase64 string `mapstructure:"SERVICE_CREDENTIAL_JSON_BASE64"`
	SpreadsheetID               string `mapstructure:"SPREADSHEET_ID"`
	SheetName                   string `mapstructure:"SHEET_NAME"`

	// AppendKeyHash is an optional bcrypt hash of the key append-link callers must present.
	AppendKeyHash string `mapstructure:"APPEND_KEY_HASH"`

	Legacy legacyConfig `mapstructure:",squash"`
}

// legacyConfig holds the variable names of earlier deployments.
type legacyConfig struct {
	ServiceAccountJSON       string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	ServiceAccountJSONBase64 string `mapstructure:"GOOGLE_SERVICE_ACCOUNT_JSON_BASE64"`
	SpreadsheetID            string `mapstructure:"GOOGLE_SPREADSHEET_ID"`
	SheetName                string `mapstructure:"GOOGLE_SHEET_NAME"`
}

// Loader loads the configuration of an invocation.
type Loader func() (Config, error)

// FromEnv loads the configuration from the process environment.
func FromEnv() (Config, error) {
	return FromEnviron(os.Environ())
}

// FromEnviron loads the configuration from "KEY=value" pairs.
func FromEnviron(environ []string) (Config, error) {
	raw := make(map[string]interface{}, len(environ))

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}

		raw[key] = value
	}

	var c Config

	err := decode(raw, &c, false)
	if err != nil {
		return Config{}, err
	}

	c.applyDefaults()

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.ServiceCredentialJSON == "" {
		c.ServiceCredentialJSON = c.Legacy.ServiceAccountJSON
	}

	if c.ServiceCredentialJSONBase64 == "" {
		c.ServiceCredentialJSONBase64 = c.Legacy.ServiceAccountJSONBase64
	}

	if c.SpreadsheetID == "" {
		c.SpreadsheetID = c.Legacy.SpreadsheetID
	}

	if c.SheetName == "" {
		c.SheetName = c.Legacy.SheetName
	}

	if c.SheetName == "" {
		c.SheetName = links.DefaultSheetName
	}
}

// Validate validates the configuration.
//
// It returns a *links.ConfigError naming every missing variable.
func (c Config) Validate() error {
	var missing []string

	if c.ServiceCredentialJSON == "" && c.ServiceCredentialJSONBase64 == "" {
		missing = append(missing, "SERVICE_CREDENTIAL_JSON (or SERVICE_CREDENTIAL_JSON_BASE64)")
	}

	if c.SpreadsheetID == "" {
		missing = append(missing, "SPREADSHEET_ID")
	}

	if len(missing) > 0 {
		return &links.ConfigError{
			Message: "Service Account not configured",
			Details: fmt.Sprintf("Please set %s", strings.Join(missing, " and ")),
		}
	}

	return nil
}

// Credential returns the configured service credential.
//
// The base64 variant wins when it is set and decodes; otherwise the plain JSON variant is used.
func (c Config) Credential() (auth.ServiceCredential, error) {
	if c.ServiceCredentialJSONBase64 != "" {
		credential, err := auth.DecodeServiceCredential(c.ServiceCredentialJSONBase64)
		if err == nil || c.ServiceCredentialJSON == "" {
			return credential, err
		}
	}

	return auth.ParseServiceCredential(c.ServiceCredentialJSON)
}

// Target returns the worksheet holding the links.
func (c Config) Target() links.Target {
	return links.Target{
		SpreadsheetID: c.SpreadsheetID,
		SheetName:     c.SheetName,
	}
}
