// Package config loads the n8n-mcp settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment keys.
const (
	KeyHostURL  = "N8N_HOST_URL"
	KeyAPIKey   = "N8N_API_KEY"
	KeyTimeout  = "N8N_TIMEOUT"
	KeyLogLevel = "LOG_LEVEL"
	KeyAddr     = "MCP_ADDR"
	KeyToken    = "MCP_TOKEN"
	KeyTLSCert  = "TLS_CERT_FILE"
	KeyTLSKey   = "TLS_KEY_FILE"
)

// Startup errors for the mandatory settings.
var (
	// ErrMissingHostURL is returned when N8N_HOST_URL is empty.
	ErrMissingHostURL = errors.New(KeyHostURL + " must be set")
	// ErrMissingAPIKey is returned when N8N_API_KEY is empty.
	ErrMissingAPIKey = errors.New(KeyAPIKey + " must be set")
	// ErrIncompleteTLS is returned when only one of TLS_CERT_FILE and TLS_KEY_FILE is set.
	ErrIncompleteTLS = errors.New(KeyTLSCert + " and " + KeyTLSKey + " must be set together")
)

// Config contains everything needed to reach n8n and to serve tools.
type Config struct {
	HostURL  string
	APIKey   string
	Timeout  time.Duration
	LogLevel string

	// HTTP transport only. The server speaks TLS when both files are set.
	Addr        string
	Token       string
	TLSCertFile string
	TLSKeyFile  string
}

// TLSEnabled reports whether a certificate and key were configured.
func (c Config) TLSEnabled() bool { return c.TLSCertFile != "" && c.TLSKeyFile != "" }

// LoadDotEnv loads the given .env files (".env" when none are given) into the
// process environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// New returns a viper instance bound to the environment with defaults applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyTimeout, "30s")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyAddr, ":3000")
	for _, k := range []string{KeyHostURL, KeyAPIKey, KeyTimeout, KeyLogLevel, KeyAddr, KeyToken, KeyTLSCert, KeyTLSKey} {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the configuration from v. Host URL and API key are mandatory.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		HostURL:  strings.TrimRight(strings.TrimSpace(v.GetString(KeyHostURL)), "/"),
		APIKey:   strings.TrimSpace(v.GetString(KeyAPIKey)),
		LogLevel: v.GetString(KeyLogLevel),
		Addr:     v.GetString(KeyAddr),
		Token:    v.GetString(KeyToken),

		TLSCertFile: strings.TrimSpace(v.GetString(KeyTLSCert)),
		TLSKeyFile:  strings.TrimSpace(v.GetString(KeyTLSKey)),
	}
	if cfg.HostURL == "" {
		return Config{}, ErrMissingHostURL
	}
	if cfg.APIKey == "" {
		return Config{}, ErrMissingAPIKey
	}
	timeout, err := time.ParseDuration(v.GetString(KeyTimeout))
	if err != nil || timeout <= 0 {
		return Config{}, fmt.Errorf("invalid %s %q", KeyTimeout, v.GetString(KeyTimeout))
	}
	cfg.Timeout = timeout
	if (cfg.TLSCertFile == "") != (cfg.TLSKeyFile == "") {
		return Config{}, ErrIncompleteTLS
	}
	return cfg, nil
}
