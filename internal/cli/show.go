package cli

import (
	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show property details",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	l, err := newAPIClient().GetProperty(args[0])
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(l)
	}

	printListingSummary(l)
	return nil
}
