// Package inquiry stores the inquiries visitors send about a listing.
package inquiry

import "time"

// Status is where an inquiry is in the follow-up workflow.
type Status string

const (
	StatusPending   Status = "pending"
	StatusContacted Status = "contacted"
	StatusClosed    Status = "closed"
)

// ValidStatus returns true if s is a known inquiry status.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusContacted, StatusClosed:
		return true
	}
	return false
}

// Inquiry is a visitor's message about one listing.
type Inquiry struct {
	ID           string    `json:"id"`
	ListingID    string    `json:"listing_id"`
	ListingTitle string    `json:"listing_title,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Message      string    `json:"message"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewInquiry is the visitor-supplied part of an inquiry.
type NewInquiry struct {
	ListingID string `json:"listing_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Message   string `json:"message"`
}

// Stats counts inquiries by status.
type Stats struct {
	PeriodDays int `json:"period_days"`
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Contacted  int `json:"contacted"`
	Closed     int `json:"closed"`
}
