package listing

import "strings"

// Filter narrows a listing collection. Zero fields match everything.
type Filter struct {
	Location string
	Category Category
	Intent   Intent
	MinPrice float64
	MaxPrice float64
	Featured bool
	Query    string
}

// Match reports whether l passes every set criterion. Location compares
// case-insensitively; Query is a case-insensitive substring match over
// title, location and description.
func (f Filter) Match(l *Listing) bool {
	if f.Location != "" && !strings.EqualFold(l.Location, f.Location) {
		return false
	}
	if f.Category != "" && l.Category != f.Category {
		return false
	}
	if f.Intent != "" && l.Intent != f.Intent {
		return false
	}
	if f.MinPrice > 0 && l.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && l.Price > f.MaxPrice {
		return false
	}
	if f.Featured && !l.Featured {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		hay := strings.ToLower(l.Title + "\n" + l.Location + "\n" + l.Description)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

// Apply returns the listings that match f, in their original order.
func (f Filter) Apply(list []*Listing) []*Listing {
	out := make([]*Listing, 0, len(list))
	for _, l := range list {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out
}
