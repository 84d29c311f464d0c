package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kinglemuel/klp/internal/client"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke and remove the stored API key",
		Long:  "Revokes the stored API key on the server and removes it from the config file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout()
		},
	}
}

func runLogout() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.APIKey == "" {
		fmt.Println("Not logged in.")
		return nil
	}

	if err := client.New(getServerURL(), cfg.APIKey).Logout(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: revoking key on server: %v\n", err)
	}

	cfg.APIKey = ""
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println("✓ Logged out. API key removed.")
	return nil
}
