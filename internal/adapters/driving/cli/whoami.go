package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/refsync/internal/core/domain"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity behind the configured IGDB credentials",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	release, err := ensureServices(ctx, Options{Need: NeedIdentity})
	if err != nil {
		return err
	}
	defer release()

	p, err := identityService.Me(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotAuthenticated) {
			return fmt.Errorf("not authenticated: check igdb.client_id and igdb.client_secret: %w", err)
		}
		return err
	}

	cmd.Printf("Client ID: %s\n", p.ClientID)
	if p.IsAppOnly() {
		cmd.Println("Login:     (app access token)")
	} else {
		cmd.Printf("Login:     %s\n", p.Login)
	}
	if len(p.Scopes) > 0 {
		cmd.Printf("Scopes:    %s\n", strings.Join(p.Scopes, ", "))
	}
	if !p.ExpiresAt.IsZero() {
		cmd.Printf("Expires:   %s (in %s)\n",
			p.ExpiresAt.Format(time.RFC3339), time.Until(p.ExpiresAt).Round(time.Minute))
	}
	return nil
}
