package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/liftly-labs/adsgate/internal/logger"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Resolve credentials and obtain an access token",
	Long: `Resolve credentials for a user and obtain a valid access token.

This exercises the full resolution path: per-user credentials win over the
shared ones, and the access token is served from cache or refreshed as
needed. Secrets are masked in the output.

Examples:
  # Token for the shared account
  adsgate token

  # Token for a specific user
  adsgate token --user alice

  # Drop the cached token so the next call refreshes
  adsgate token --user alice --invalidate`,
	RunE: runToken,
}

var (
	tokenUser       string
	tokenInvalidate bool
)

func init() {
	tokenCmd.Flags().StringVar(
		&tokenUser, "user", "", "user ID to resolve credentials for (empty for shared)")
	tokenCmd.Flags().BoolVar(
		&tokenInvalidate, "invalidate", false, "drop the cached token instead of fetching one")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	if gatewayService == nil {
		return errors.New("gateway service not configured")
	}

	ctx := context.Background()

	if tokenInvalidate {
		if err := gatewayService.Invalidate(ctx, tokenUser); err != nil {
			return fmt.Errorf("invalidating cached token: %w", err)
		}
		cmd.Println("Cached token invalidated")
		return nil
	}

	cc, err := gatewayService.CallContext(ctx, tokenUser)
	if err != nil {
		return fmt.Errorf("obtaining access token: %w", err)
	}

	cmd.Printf("Access token:    %s\n", logger.Redact(cc.AccessToken))
	cmd.Printf("Developer token: %s\n", logger.Redact(cc.DeveloperToken))
	cmd.Printf("Customer ID:     %s\n", cc.CustomerID)
	return nil
}
