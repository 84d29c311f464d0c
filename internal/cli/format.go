package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/kinglemuel/klp/internal/inquiry"
	"github.com/kinglemuel/klp/internal/listing"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printListingSummary prints a single listing in text format.
func printListingSummary(l *listing.Listing) {
	fmt.Printf("%s\n", l.Title)
	fmt.Printf("  ID:        %s\n", l.ID)
	fmt.Printf("  Location:  %s\n", l.Location)
	fmt.Printf("  Price:     %s\n", formatPrice(l.Price, l.Intent))
	fmt.Printf("  Type:      %s for %s\n", l.Category, l.Intent)
	if l.Featured {
		fmt.Printf("  Featured:  yes\n")
	}
	if l.Contact.Name != "" || l.Contact.Phone != "" {
		fmt.Printf("  Contact:   %s %s\n", l.Contact.Name, l.Contact.Phone)
	}
	if l.TitleCertificate != "" {
		fmt.Printf("  Title:     %s\n", l.TitleCertificate)
	}
	fmt.Printf("  Images:    %d\n", len(l.Images))
	if len(l.Documents) > 0 {
		fmt.Printf("  Documents: %d\n", len(l.Documents))
	}
	fmt.Printf("  Listed:    %s\n", l.CreatedAt.Format("2006-01-02"))
	if l.Description != "" {
		fmt.Printf("\n  %s\n", l.Description)
	}
}

// printListingTable prints listings as a formatted table.
func printListingTable(list []*listing.Listing) error {
	if len(list) == 0 {
		fmt.Println("No properties found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tTITLE\tLOCATION\tTYPE\tPRICE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t-----\t--------\t----\t-----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, l := range list {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\t%s\n",
			l.ID, truncate(l.Title, 40), truncate(l.Location, 24), l.Category, l.Intent,
			formatPrice(l.Price, l.Intent)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d properties\n", len(list))
	return nil
}

// printInquiryTable prints inquiries as a formatted table.
func printInquiryTable(list []*inquiry.Inquiry) error {
	if len(list) == 0 {
		fmt.Println("No inquiries found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tDATE\tSTATUS\tLISTING\tFROM"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, inq := range list {
		listingName := inq.ListingTitle
		if listingName == "" {
			listingName = inq.ListingID
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s <%s>\n",
			inq.ID[:min(8, len(inq.ID))], inq.CreatedAt.Format("2006-01-02"), inq.Status,
			truncate(listingName, 32), inq.Name, inq.Email); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\nTotal: %d inquiries\n", len(list))
	return nil
}

// formatPrice formats a cedi amount with thousands separators. Rentals
// are priced per month.
func formatPrice(amount float64, intent listing.Intent) string {
	s := "GH₵" + formatWithCommas(int64(amount))
	if intent == listing.IntentRent {
		s += "/mo"
	}
	return s
}

func formatWithCommas(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	return strings.Join(parts, ",")
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
