package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kinglemuel/klp/internal/client"
)

func newClearUploadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-uploads",
		Short: "Remove every uploaded property",
		Long:  "Remove every property uploaded through the site. Seed properties stay as they are.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cleared, err := newAPIClient().ClearUploads()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(map[string]bool{"cleared": cleared})
			}
			if cleared {
				fmt.Println("Uploaded properties removed.")
			} else {
				fmt.Println("No uploaded properties to remove.")
			}
			return nil
		},
	}
}

func newRemoveAllCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove-all",
		Short: "Hide the seed properties and remove all uploads",
		Long:  "Hide every seed property and delete every uploaded property. Uploads cannot be recovered; seed properties come back with restore.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("remove-all deletes every uploaded property; rerun with --yes to confirm")
			}
			st, err := newAPIClient().RemoveAll()
			if err != nil {
				return err
			}
			return printAdminStatus(st, "All properties removed.")
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removal")

	return cmd
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Show the seed properties again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newAPIClient().RestoreSeed()
			if err != nil {
				return err
			}
			return printAdminStatus(st, "Default properties restored.")
		},
	}
}

func printAdminStatus(st *client.AdminStatus, headline string) error {
	if isJSON() {
		return printJSON(st)
	}
	if headline != "" {
		fmt.Println(headline)
	}
	visibility := "visible"
	if st.SeedHidden {
		visibility = "hidden"
	}
	fmt.Printf("  Seed:      %s (%d shown)\n", visibility, st.SeedCount)
	fmt.Printf("  Uploaded:  %d\n", st.UploadedCount)
	return nil
}
