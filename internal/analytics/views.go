// Package analytics records listing views and summarizes site activity
// for the admin dashboard.
package analytics

import (
	"database/sql"
	"fmt"
	"time"
)

// View is one recorded page view of a listing.
type View struct {
	ViewedAt  time.Time `json:"viewed_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// ListingViews describes the views of one listing over a period.
type ListingViews struct {
	ListingID   string         `json:"listing_id"`
	PeriodDays  int            `json:"period_days"`
	TotalViews  int            `json:"total_views"`
	UniqueIPs   int            `json:"unique_ips"`
	ViewsByDate map[string]int `json:"views_by_date"`
	RecentViews []View         `json:"recent_views"`
}

const recentViewLimit = 10

// Repository stores listing views.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a view repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Record stores a view of listingID.
func (r *Repository) Record(listingID, ipAddress, userAgent string) error {
	if listingID == "" {
		return fmt.Errorf("listing id is required")
	}
	if _, err := r.db.Exec(
		`INSERT INTO property_views (listing_id, ip_address, user_agent, viewed_at) VALUES (?, ?, ?, ?)`,
		listingID, ipAddress, userAgent, r.now().UTC(),
	); err != nil {
		return fmt.Errorf("inserting view: %w", err)
	}
	return nil
}

// since returns the start of a period ending now.
func (r *Repository) since(periodDays int) (time.Time, error) {
	if periodDays <= 0 {
		return time.Time{}, fmt.Errorf("period must be a positive number of days")
	}
	return r.now().UTC().AddDate(0, 0, -periodDays), nil
}

// Counts returns the number of views per listing id over the last
// periodDays days.
func (r *Repository) Counts(periodDays int) (counts map[string]int, err error) {
	start, err := r.since(periodDays)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		"SELECT listing_id, COUNT(*) FROM property_views WHERE viewed_at >= ? GROUP BY listing_id",
		start,
	)
	if err != nil {
		return nil, fmt.Errorf("counting views: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	counts = make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scanning view count: %w", err)
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating view counts: %w", err)
	}
	return counts, nil
}

// ForListing returns the views of one listing over the last periodDays
// days, newest first.
func (r *Repository) ForListing(listingID string, periodDays int) (stats *ListingViews, err error) {
	start, err := r.since(periodDays)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		`SELECT viewed_at, ip_address, user_agent FROM property_views
		WHERE listing_id = ? AND viewed_at >= ?
		ORDER BY viewed_at DESC, id DESC`,
		listingID, start,
	)
	if err != nil {
		return nil, fmt.Errorf("listing views: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	stats = &ListingViews{
		ListingID:   listingID,
		PeriodDays:  periodDays,
		ViewsByDate: make(map[string]int),
		RecentViews: []View{},
	}
	ips := make(map[string]bool)
	for rows.Next() {
		var v View
		if err := rows.Scan(&v.ViewedAt, &v.IPAddress, &v.UserAgent); err != nil {
			return nil, fmt.Errorf("scanning view: %w", err)
		}
		stats.TotalViews++
		ips[v.IPAddress] = true
		stats.ViewsByDate[v.ViewedAt.UTC().Format(time.DateOnly)]++
		if len(stats.RecentViews) < recentViewLimit {
			stats.RecentViews = append(stats.RecentViews, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating views: %w", err)
	}
	stats.UniqueIPs = len(ips)

	return stats, nil
}
