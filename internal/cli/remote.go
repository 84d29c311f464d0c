package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kinglemuel/klp/internal/listing"
	"github.com/kinglemuel/klp/internal/remote"
)

func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage listings in the remote listing service",
		Long:  "List, edit, delete and restore the properties kept in the hosted listing database.",
	}

	cmd.AddCommand(
		newRemoteListCmd(),
		newRemoteUpdateCmd(),
		newRemoteDeleteCmd(),
		newRemoteRestoreCmd(),
	)

	return cmd
}

func newRemoteListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List remote properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := newAPIClient().RemoteList(all)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(entries)
			}
			return printRemoteTable(entries)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include deleted properties")

	return cmd
}

func newRemoteUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <file>",
		Short: "Change fields of a remote property",
		Long:  "Apply the fields in a JSON file (use - for stdin) to a remote property. Fields left out keep their value.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPatch(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			l, err := newAPIClient().RemoteUpdate(args[0], p)
			if err != nil {
				return fmt.Errorf("updating property: %w", err)
			}
			if isJSON() {
				return printJSON(l)
			}
			fmt.Println("Property updated.")
			printListingSummary(l)
			return nil
		},
	}
}

func newRemoteDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a remote property (it can be restored)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newAPIClient().RemoteDelete(args[0]); err != nil {
				return err
			}
			if isJSON() {
				return printJSON(map[string]any{"id": args[0], "deleted": true})
			}
			fmt.Printf("Property %s deleted.\n", args[0])
			return nil
		},
	}
}

func newRemoteRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a deleted remote property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newAPIClient().RemoteRestore(args[0]); err != nil {
				return err
			}
			if isJSON() {
				return printJSON(map[string]any{"id": args[0], "restored": true})
			}
			fmt.Printf("Property %s restored.\n", args[0])
			return nil
		},
	}
}

// readPatch decodes listing changes from path, or stdin when path is "-".
func readPatch(path string, stdin io.Reader) (listing.Patch, error) {
	var p listing.Patch

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return p, fmt.Errorf("opening %s: %w", path, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				fmt.Fprintf(os.Stderr, "warning: closing %s: %v\n", path, cerr)
			}
		}()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, fmt.Errorf("parsing changes: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("invalid changes: %w", err)
	}
	return p, nil
}

// printRemoteTable prints remote entries with their active state.
func printRemoteTable(entries []remote.Entry) error {
	if len(entries) == 0 {
		fmt.Println("No remote properties found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tTITLE\tLOCATION\tPRICE\tSTATE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, e := range entries {
		l := e.Listing
		state := "active"
		if !e.Active {
			state = "deleted"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			l.ID, truncate(l.Title, 40), truncate(l.Location, 24), formatPrice(l.Price, l.Intent), state); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d properties\n", len(entries))
	return nil
}
