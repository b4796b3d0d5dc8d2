package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/liftly-labs/adsgate/internal/core/domain"
	"github.com/liftly-labs/adsgate/internal/logger"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage per-user Google Ads credentials",
	Long: `Register and inspect per-user Google Ads credentials.

A user can either bring their own developer token and OAuth client, or only
set a customer ID and use the shared credentials configured by the operator.

Examples:
  # Register own credentials (missing secrets are prompted for)
  adsgate credentials set --user alice --own --customer-id 123-456-7890

  # Register own credentials non-interactively
  adsgate credentials set --user alice --own \
    --customer-id 123-456-7890 \
    --developer-token "TOKEN" \
    --client-id "CLIENT_ID" \
    --client-secret "CLIENT_SECRET" \
    --refresh-token "REFRESH_TOKEN"

  # Only override the customer ID, keep using shared credentials
  adsgate credentials set --user alice --customer-id 123-456-7890

  # Show what is stored for a user
  adsgate credentials show --user alice`,
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Register or update credentials for a user",
	RunE:  runCredentialsSet,
}

var credentialsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show stored credentials for a user (secrets masked)",
	RunE:  runCredentialsShow,
}

// Flags for credentials set/show.
var (
	credUser           string
	credOwn            bool
	credCustomerID     string
	credDeveloperToken string
	credClientID       string
	credClientSecret   string
	credRefreshToken   string
)

func init() {
	credentialsSetCmd.Flags().StringVar(
		&credUser, "user", "", "user ID the credentials belong to")
	credentialsSetCmd.Flags().BoolVar(
		&credOwn, "own", false, "the user brings their own developer token and OAuth client")
	credentialsSetCmd.Flags().StringVar(
		&credCustomerID, "customer-id", "", "Google Ads customer ID")
	credentialsSetCmd.Flags().StringVar(
		&credDeveloperToken, "developer-token", "", "Google Ads developer token")
	credentialsSetCmd.Flags().StringVar(
		&credClientID, "client-id", "", "OAuth client ID")
	credentialsSetCmd.Flags().StringVar(
		&credClientSecret, "client-secret", "", "OAuth client secret (prompted if omitted)")
	credentialsSetCmd.Flags().StringVar(
		&credRefreshToken, "refresh-token", "", "OAuth refresh token (prompted if omitted)")

	credentialsShowCmd.Flags().StringVar(
		&credUser, "user", "", "user ID to show credentials for")

	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsCmd.AddCommand(credentialsShowCmd)
	rootCmd.AddCommand(credentialsCmd)
}

func runCredentialsSet(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	if credentialsService == nil {
		return errors.New("credentials service not configured")
	}
	if credUser == "" {
		return errors.New("--user is required")
	}

	rec := domain.CredentialRecord{
		Identity:           domain.UserIdentity(credUser),
		CustomerID:         credCustomerID,
		UsesOwnCredentials: credOwn,
	}

	if credOwn {
		rec.DeveloperToken = promptIfEmpty(cmd, credDeveloperToken, "Developer token", false)
		rec.ClientID = promptIfEmpty(cmd, credClientID, "OAuth client ID", false)
		rec.ClientSecret = promptIfEmpty(cmd, credClientSecret, "OAuth client secret", true)
		rec.RefreshToken = promptIfEmpty(cmd, credRefreshToken, "OAuth refresh token", true)
		if rec.CustomerID == "" {
			rec.CustomerID = promptIfEmpty(cmd, "", "Customer ID", false)
		}
	}

	if err := credentialsService.Save(context.Background(), rec); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	cmd.Printf("Credentials saved for user %q\n", credUser)
	return nil
}

func runCredentialsShow(cmd *cobra.Command, _ []string) error {
	if err := initServices(); err != nil {
		return err
	}
	if credentialsService == nil {
		return errors.New("credentials service not configured")
	}
	if credUser == "" {
		return errors.New("--user is required")
	}

	rec, err := credentialsService.Get(context.Background(), credUser)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			cmd.Printf("No credentials stored for user %q\n", credUser)
			return nil
		}
		return fmt.Errorf("loading credentials: %w", err)
	}

	cmd.Printf("User:            %s\n", credUser)
	cmd.Printf("Customer ID:     %s\n", valueOrUnset(rec.CustomerID))
	if rec.UsesOwnCredentials {
		cmd.Println("Mode:            own credentials")
		cmd.Printf("Developer token: %s\n", logger.Redact(rec.DeveloperToken))
		cmd.Printf("Client ID:       %s\n", valueOrUnset(rec.ClientID))
		cmd.Printf("Client secret:   %s\n", logger.Redact(rec.ClientSecret))
		cmd.Printf("Refresh token:   %s\n", logger.Redact(rec.RefreshToken))
	} else {
		cmd.Println("Mode:            shared credentials")
	}
	return nil
}

// promptIfEmpty returns value when set, otherwise prompts for it. Secret
// input is read without echo when stdin is a terminal.
func promptIfEmpty(cmd *cobra.Command, value, label string, secret bool) string {
	if value != "" {
		return value
	}
	cmd.Printf("%s: ", label)
	if secret {
		v := readSecret()
		cmd.Println()
		return v
	}
	return readLine()
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine() string {
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readSecret() string {
	// Read without echo when possible
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	// Fallback to regular input
	return readLine()
}

func valueOrUnset(v string) string {
	if v == "" {
		return "(not set)"
	}
	return v
}
