package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kinglemuel/klp/internal/inquiry"
)

func newInquiriesCmd() *cobra.Command {
	var status, listingID string

	cmd := &cobra.Command{
		Use:   "inquiries",
		Short: "List visitor inquiries",
		Long:  "List the inquiries visitors sent about properties, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !inquiry.ValidStatus(status) {
				return fmt.Errorf("invalid status %q (use pending, contacted, or closed)", status)
			}
			list, err := newAPIClient().ListInquiries(status, listingID)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(list)
			}
			return printInquiryTable(list)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending|contacted|closed)")
	cmd.Flags().StringVar(&listingID, "listing", "", "filter by property ID")

	cmd.AddCommand(newInquiryUpdateCmd(), newInquiryStatsCmd())

	return cmd
}

func newInquiryUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <status>",
		Short: "Move an inquiry to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !inquiry.ValidStatus(args[1]) {
				return fmt.Errorf("invalid status %q (use pending, contacted, or closed)", args[1])
			}
			inq, err := newAPIClient().UpdateInquiry(args[0], args[1])
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(inq)
			}
			fmt.Printf("Inquiry %s is now %s.\n", inq.ID, inq.Status)
			return nil
		},
	}
}

func newInquiryStatsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count recent inquiries by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}
			st, err := newAPIClient().InquiryStats(days)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(st)
			}
			fmt.Printf("Last %d days: %d inquiries\n", st.PeriodDays, st.Total)
			fmt.Printf("  Pending:    %d\n", st.Pending)
			fmt.Printf("  Contacted:  %d\n", st.Contacted)
			fmt.Printf("  Closed:     %d\n", st.Closed)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "period in days")

	return cmd
}
