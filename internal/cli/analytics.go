package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kinglemuel/klp/internal/analytics"
)

func newAnalyticsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Summarize listings, views and inquiries",
		Long:  "Show listing counts, the most viewed properties and inquiry counts for a recent period.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--period must be positive")
			}
			sum, err := newAPIClient().Analytics(days)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(sum)
			}
			return printSummary(sum)
		},
	}

	cmd.Flags().IntVar(&days, "period", 30, "period in days")
	cmd.AddCommand(newDashboardCmd())

	return cmd
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the admin dashboard counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := newAPIClient().Dashboard()
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(d)
			}
			fmt.Printf("Properties:         %d\n", d.TotalProperties)
			fmt.Printf("Pending inquiries:  %d\n", d.PendingInquiries)
			fmt.Printf("Views (30 days):    %d\n", d.TotalViews)
			if len(d.RecentInquiries) > 0 {
				fmt.Println()
				return printInquiryTable(d.RecentInquiries)
			}
			return nil
		},
	}
}

func newViewsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "views <id>",
		Short: "Show page views of one property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--period must be positive")
			}
			v, err := newAPIClient().ListingViews(args[0], days)
			if err != nil {
				return err
			}
			if isJSON() {
				return printJSON(v)
			}
			fmt.Printf("Last %d days: %d views from %d addresses\n", v.PeriodDays, v.TotalViews, v.UniqueIPs)
			for _, rv := range v.RecentViews {
				fmt.Printf("  %s  %-15s  %s\n", rv.ViewedAt.Format("2006-01-02 15:04"), rv.IPAddress, truncate(rv.UserAgent, 48))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "period", 30, "period in days")

	return cmd
}

// printSummary prints an analytics summary in text format.
func printSummary(s *analytics.Summary) error {
	p := s.Properties
	fmt.Printf("Last %s\n", s.Period)
	fmt.Printf("  Properties:  %d (%d land, %d house; %d buy, %d rent; %d featured)\n",
		p.Total, p.ByType.Land, p.ByType.House, p.ByPurpose.Buy, p.ByPurpose.Rent, p.Featured)
	fmt.Printf("  Views:       %d across %d properties\n", s.Views.Total, s.Views.UniqueProperties)
	fmt.Printf("  Inquiries:   %d (%d pending, %d contacted, %d closed)\n",
		s.Inquiries.Total, s.Inquiries.ByStatus.Pending, s.Inquiries.ByStatus.Contacted, s.Inquiries.ByStatus.Closed)

	if len(s.Views.MostViewed) == 0 {
		return nil
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tTITLE\tLOCATION\tVIEWS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, item := range s.Views.MostViewed {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			item.ID, truncate(item.Title, 40), truncate(item.Location, 24), item.ViewCount); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}
