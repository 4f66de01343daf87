package config

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Server is the configuration of the HTTP server hosting the functions.
type Server struct {
	Addr  string `mapstructure:"addr"`
	Debug bool   `mapstructure:"debug"`

	// UpstreamTimeout bounds every call to the token endpoint and the spreadsheet API.
	UpstreamTimeout time.Duration `mapstructure:"upstreamTimeout"`

	// TokenEndpoint overrides the token endpoint of the service credential.
	TokenEndpoint string `mapstructure:"tokenEndpoint"`

	// SheetsEndpoint overrides the spreadsheet API base URL.
	SheetsEndpoint string `mapstructure:"sheetsEndpoint"`
}

// DefaultServer returns the default server configuration.
func DefaultServer() Server {
	return Server{
		Addr:            ":8080",
		UpstreamTimeout: 10 * time.Second,
	}
}

// LoadServer reads a YAML server configuration on top of the defaults.
func LoadServer(r io.Reader) (Server, error) {
	c := DefaultServer()

	var raw map[string]interface{}

	err := yaml.NewDecoder(r).Decode(&raw)
	if err != nil && !errors.Is(err, io.EOF) {
		return Server{}, fmt.Errorf("parsing server config: %w", err)
	}

	err = decode(raw, &c, true)
	if err != nil {
		return Server{}, fmt.Errorf("decoding server config: %w", err)
	}

	return c, c.Validate()
}

// Validate validates the server configuration.
func (c Server) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("server: addr is required")
	}

	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("server: upstreamTimeout must be positive")
	}

	return nil
}
