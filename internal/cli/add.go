package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kinglemuel/klp/internal/listing"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>",
		Short: "Add a property from a JSON file",
		Long:  "Submit a new property described by a JSON file (use - for stdin). The file uses the same fields as the site's upload form.",
		Args:  cobra.ExactArgs(1),
		RunE:  runAdd,
	}
}

// readDraft decodes a listing draft from path, or stdin when path is "-".
func readDraft(path string, stdin io.Reader) (listing.Draft, error) {
	var d listing.Draft

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return d, fmt.Errorf("opening %s: %w", path, err)
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
	if err := dec.Decode(&d); err != nil {
		return d, fmt.Errorf("parsing property: %w", err)
	}
	if err := d.Validate(); err != nil {
		return d, fmt.Errorf("invalid property: %w", err)
	}
	return d, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	d, err := readDraft(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}

	l, err := newAPIClient().AddProperty(d)
	if err != nil {
		return fmt.Errorf("adding property: %w", err)
	}

	if isJSON() {
		return printJSON(l)
	}

	fmt.Println("Property added successfully!")
	printListingSummary(l)
	return nil
}
