package cli

import (
	"github.com/spf13/cobra"

	"github.com/kinglemuel/klp/internal/client"
)

func newListCmd() *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visible properties",
		Long:  "List the properties the site currently shows, optionally filtered.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Location, "location", "", "only properties in this location")
	cmd.Flags().StringVar(&opts.Type, "type", "", "property type (land|house)")
	cmd.Flags().StringVar(&opts.Purpose, "purpose", "", "listing purpose (buy|rent)")
	cmd.Flags().Float64Var(&opts.MinPrice, "min-price", 0, "minimum price in cedis")
	cmd.Flags().Float64Var(&opts.MaxPrice, "max-price", 0, "maximum price in cedis")
	cmd.Flags().BoolVar(&opts.Featured, "featured", false, "only featured properties")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "search title, location and description")

	return cmd
}

func runList(opts client.ListOptions) error {
	list, err := newAPIClient().ListProperties(opts)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(list)
	}

	return printListingTable(list)
}
