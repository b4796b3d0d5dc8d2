package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/liftly-labs/adsgate/internal/adapters/driven/config/file"
	"github.com/liftly-labs/adsgate/internal/adapters/driven/oauth"
	"github.com/liftly-labs/adsgate/internal/adapters/driven/storage/sqlite"
	"github.com/liftly-labs/adsgate/internal/core/ports/driving"
	"github.com/liftly-labs/adsgate/internal/core/services"
	"github.com/liftly-labs/adsgate/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services used by subcommands. Wired by initServices; tests inject fakes.
var (
	gatewayService     driving.Gateway
	credentialsService driving.CredentialsService
	configProvider     *file.Provider
	store              *sqlite.Store
)

// Persistent flags.
var (
	verbose    bool
	configPath string
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:   "adsgate",
	Short: "Credential gateway for the Google Ads API",
	Long: `Adsgate resolves Google Ads API credentials and manages OAuth access
tokens for downstream tooling.

Users can register their own developer token and OAuth client, or fall back
to the shared credentials configured by the operator. Access tokens are
cached and refreshed automatically.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "", "path to config file (default ~/.adsgate/config.toml)")
	rootCmd.PersistentFlags().StringVar(
		&dataDir, "data-dir", "", "directory for the credential database (default ~/.adsgate/data)")
}

// initServices builds the adapter and service graph. Commands that need
// services call it from their RunE; version does not. Tests that preset the
// service variables skip the wiring entirely.
func initServices() error {
	if gatewayService != nil && credentialsService != nil {
		return nil
	}

	path := configPath
	if path == "" {
		var err error
		path, err = file.DefaultPath()
		if err != nil {
			return fmt.Errorf("locating config file: %w", err)
		}
	}

	provider, err := file.NewProvider(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	dir := dataDir
	if dir == "" {
		dir = provider.Config().DataDir
	}

	st, err := sqlite.NewStore(dir)
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}

	secretStore := sqlite.NewSecretStore(st, provider)
	resolver := services.NewResolver(secretStore)
	cache := services.NewTokenCache(secretStore, oauth.NewExchanger())

	gatewayService = services.NewGatewayService(resolver, cache)
	credentialsService = services.NewCredentialsSetup(secretStore)
	configProvider = provider
	store = st

	logger.Debug("services initialised (config=%s, data=%s)", path, st.Path())
	return nil
}

// Execute runs the root command and releases resources afterwards.
func Execute() {
	err := rootCmd.Execute()
	if store != nil {
		store.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}
