package listing

import (
	"errors"
	"fmt"
	"strings"
)

// Patch is a partial listing update. Nil fields are left unchanged; a
// non-nil Documents replaces the whole document set.
type Patch struct {
	Title            *string     `json:"title,omitempty"`
	Location         *string     `json:"location,omitempty"`
	Price            *float64    `json:"price,omitempty"`
	Category         *Category   `json:"propertyType,omitempty"`
	Intent           *Intent     `json:"purpose,omitempty"`
	Description      *string     `json:"description,omitempty"`
	Images           *[]string   `json:"images,omitempty"`
	Video            *string     `json:"video,omitempty"`
	TitleCertificate *string     `json:"landTitleCertification,omitempty"`
	Contact          *Contact    `json:"contact,omitempty"`
	Featured         *bool       `json:"featured,omitempty"`
	Documents        *[]Document `json:"ownershipDocuments,omitempty"`
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Validate applies the Draft rules to the fields p sets.
func (p Patch) Validate() error {
	if p.Empty() {
		return errors.New("no fields to update")
	}
	var problems []string
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		problems = append(problems, "title must not be empty")
	}
	if p.Location != nil && strings.TrimSpace(*p.Location) == "" {
		problems = append(problems, "location must not be empty")
	}
	if p.Price != nil && *p.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	if p.Category != nil && !ValidCategory(string(*p.Category)) {
		problems = append(problems, fmt.Sprintf("invalid property type %q (use land or house)", *p.Category))
	}
	if p.Intent != nil && !ValidIntent(string(*p.Intent)) {
		problems = append(problems, fmt.Sprintf("invalid purpose %q (use buy or rent)", *p.Intent))
	}
	if p.Images != nil && len(*p.Images) == 0 {
		problems = append(problems, "at least one image is required")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
