package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an uploaded property",
		Long:  "Remove a property that was uploaded through the site. Seed properties cannot be removed; use remove-all to hide them.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemove,
	}
}

func runRemove(cmd *cobra.Command, args []string) error {
	id := args[0]
	if err := newAPIClient().DeleteProperty(id); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]any{
			"id":      id,
			"removed": true,
		})
	}

	fmt.Printf("Property %s removed.\n", id)
	return nil
}
