// Package file provides the TOML-based configuration for adsgate: the data
// directory, the shared platform credentials, and Ads API options. The
// configuration is parsed once into a typed struct at startup and passed by
// reference; secrets are never re-read ad hoc at call sites.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/liftly-labs/adsgate/internal/core/domain"
)

// SharedCredentials is the platform-wide fallback credential set, used for
// every user who has not supplied their own.
type SharedCredentials struct {
	CustomerID     string `toml:"customer_id"`
	DeveloperToken string `toml:"developer_token"`
	ClientID       string `toml:"client_id"`
	ClientSecret   string `toml:"client_secret"`
	RefreshToken   string `toml:"refresh_token"`
}

// Config is the process configuration, assembled once at startup.
type Config struct {
	// DataDir is where the SQLite credential store lives.
	// Defaults to ~/.adsgate/data.
	DataDir string `toml:"data_dir"`

	// LoginCustomerID is the optional manager account sent as the
	// login-customer-id header on Ads API calls. Explicit configuration,
	// never hardcoded.
	LoginCustomerID string `toml:"login_customer_id"`

	Shared SharedCredentials `toml:"shared"`
}

// DefaultPath returns ~/.adsgate/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".adsgate", "config.toml"), nil
}

// Load reads the configuration file and applies environment overrides.
// A missing file is not an error: secrets are often supplied purely via
// environment in deployed processes.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Environment-only configuration.
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnv(&cfg)
	cfg.Shared.CustomerID = domain.NormalizeCustomerID(cfg.Shared.CustomerID)
	cfg.LoginCustomerID = domain.NormalizeCustomerID(cfg.LoginCustomerID)
	return &cfg, nil
}

// applyEnv lets ADSGATE_* variables override file values, so deployed
// processes can keep secrets out of files entirely.
func applyEnv(cfg *Config) {
	overrides := []struct {
		env string
		dst *string
	}{
		{"ADSGATE_DATA_DIR", &cfg.DataDir},
		{"ADSGATE_LOGIN_CUSTOMER_ID", &cfg.LoginCustomerID},
		{"ADSGATE_SHARED_CUSTOMER_ID", &cfg.Shared.CustomerID},
		{"ADSGATE_DEVELOPER_TOKEN", &cfg.Shared.DeveloperToken},
		{"ADSGATE_CLIENT_ID", &cfg.Shared.ClientID},
		{"ADSGATE_CLIENT_SECRET", &cfg.Shared.ClientSecret},
		{"ADSGATE_REFRESH_TOKEN", &cfg.Shared.RefreshToken},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok {
			*o.dst = v
		}
	}
}

// SharedRecord assembles the shared credential record, or nil when no shared
// credentials are configured at all.
func (c *Config) SharedRecord() *domain.CredentialRecord {
	s := c.Shared
	if s.CustomerID == "" && s.DeveloperToken == "" && s.ClientID == "" &&
		s.ClientSecret == "" && s.RefreshToken == "" {
		return nil
	}
	return &domain.CredentialRecord{
		Identity:       domain.SharedIdentity(),
		CustomerID:     s.CustomerID,
		DeveloperToken: s.DeveloperToken,
		ClientID:       s.ClientID,
		ClientSecret:   s.ClientSecret,
		RefreshToken:   s.RefreshToken,
	}
}
