package analytics

import (
	"fmt"
	"sort"

	"github.com/kinglemuel/klp/internal/inquiry"
	"github.com/kinglemuel/klp/internal/listing"
)

const mostViewedLimit = 5

// Summary is the admin overview of listings, views and inquiries.
type Summary struct {
	Period     string         `json:"period"`
	Properties PropertyCounts `json:"properties"`
	Views      ViewSummary    `json:"views"`
	Inquiries  InquirySummary `json:"inquiries"`
}

// PropertyCounts counts the visible listings by kind.
type PropertyCounts struct {
	Total     int           `json:"total"`
	ByType    TypeCounts    `json:"byType"`
	ByPurpose PurposeCounts `json:"byPurpose"`
	Featured  int           `json:"featured"`
}

type TypeCounts struct {
	Land  int `json:"land"`
	House int `json:"house"`
}

type PurposeCounts struct {
	Buy  int `json:"buy"`
	Rent int `json:"rent"`
}

// ViewSummary counts views over the period.
type ViewSummary struct {
	Total            int          `json:"total"`
	UniqueProperties int          `json:"uniqueProperties"`
	MostViewed       []ViewedItem `json:"mostViewed"`
}

// ViewedItem is a visible listing with its view count.
type ViewedItem struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Location  string           `json:"location"`
	Category  listing.Category `json:"propertyType"`
	Intent    listing.Intent   `json:"purpose"`
	ViewCount int              `json:"viewCount"`
}

// InquirySummary counts inquiries over the period.
type InquirySummary struct {
	Total    int          `json:"total"`
	ByStatus StatusCounts `json:"byStatus"`
}

type StatusCounts struct {
	Pending   int `json:"pending"`
	Contacted int `json:"contacted"`
	Closed    int `json:"closed"`
}

// Summarize builds a Summary from the visible listings, per-listing view
// counts and inquiry counts for the same period. Views of listings that
// are no longer visible count toward the totals but are not ranked.
func Summarize(periodDays int, listings []*listing.Listing, views map[string]int, inquiries *inquiry.Stats) *Summary {
	s := &Summary{Period: fmt.Sprintf("%d days", periodDays)}

	byID := make(map[string]*listing.Listing, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
		s.Properties.Total++
		switch l.Category {
		case listing.CategoryLand:
			s.Properties.ByType.Land++
		case listing.CategoryHouse:
			s.Properties.ByType.House++
		}
		switch l.Intent {
		case listing.IntentBuy:
			s.Properties.ByPurpose.Buy++
		case listing.IntentRent:
			s.Properties.ByPurpose.Rent++
		}
		if l.Featured {
			s.Properties.Featured++
		}
	}

	type counted struct {
		id string
		n  int
	}
	ranked := make([]counted, 0, len(views))
	for id, n := range views {
		s.Views.Total += n
		s.Views.UniqueProperties++
		ranked = append(ranked, counted{id, n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].n != ranked[j].n {
			return ranked[i].n > ranked[j].n
		}
		return ranked[i].id < ranked[j].id
	})

	s.Views.MostViewed = []ViewedItem{}
	for _, c := range ranked {
		if len(s.Views.MostViewed) == mostViewedLimit {
			break
		}
		l, ok := byID[c.id]
		if !ok {
			continue
		}
		s.Views.MostViewed = append(s.Views.MostViewed, ViewedItem{
			ID:        l.ID,
			Title:     l.Title,
			Location:  l.Location,
			Category:  l.Category,
			Intent:    l.Intent,
			ViewCount: c.n,
		})
	}

	if inquiries != nil {
		s.Inquiries.Total = inquiries.Total
		s.Inquiries.ByStatus.Pending = inquiries.Pending
		s.Inquiries.ByStatus.Contacted = inquiries.Contacted
		s.Inquiries.ByStatus.Closed = inquiries.Closed
	}

	return s
}

// Dashboard is the admin landing summary.
type Dashboard struct {
	TotalProperties  int                `json:"totalProperties"`
	PendingInquiries int                `json:"pendingInquiries"`
	TotalViews       int                `json:"totalViews"`
	RecentInquiries  []*inquiry.Inquiry `json:"recentInquiries"`
}
