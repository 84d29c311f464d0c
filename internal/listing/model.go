// Package listing provides the property listing model and the Store that
// reconciles the built-in seed catalog with user-uploaded listings.
package listing

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// UserIDPrefix marks the id of every listing created through Store.Add.
// Ids without it belong to the seed catalog.
const UserIDPrefix = "uploaded-"

// IsUserID reports whether id names a user-uploaded listing.
func IsUserID(id string) bool {
	return strings.HasPrefix(id, UserIDPrefix)
}

// Category is the kind of property on offer.
type Category string

const (
	CategoryLand  Category = "land"
	CategoryHouse Category = "house"
)

// ValidCategory returns true if s is a known category.
func ValidCategory(s string) bool {
	switch Category(s) {
	case CategoryLand, CategoryHouse:
		return true
	}
	return false
}

// Intent is what the lister wants to do with the property.
type Intent string

const (
	IntentBuy  Intent = "buy"
	IntentRent Intent = "rent"
)

// ValidIntent returns true if s is a known intent.
func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentBuy, IntentRent:
		return true
	}
	return false
}

// Uploader records who submitted a listing.
type Uploader string

const (
	UploaderAdmin Uploader = "admin"
	UploaderUser  Uploader = "user"
)

// ValidUploader returns true if s is a known uploader.
func ValidUploader(s string) bool {
	switch Uploader(s) {
	case UploaderAdmin, UploaderUser:
		return true
	}
	return false
}

// Origin says where a listing in memory came from.
type Origin string

const (
	OriginSeed   Origin = "seed"
	OriginUser   Origin = "user"
	OriginRemote Origin = "remote"
)

// Document is an ownership or supporting document attached to a listing.
type Document struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Attachment is a free-form file attached at upload time.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Contact is the person to call about a listing.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Listing is a property offered for sale or rent.
//
// The JSON field names match the documents already stored under the
// listings key, so existing data decodes unchanged.
type Listing struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Location         string       `json:"location"`
	Price            float64      `json:"price"`
	Category         Category     `json:"propertyType"`
	Intent           Intent       `json:"purpose"`
	Description      string       `json:"description"`
	Images           []string     `json:"images"`
	Video            string       `json:"video,omitempty"`
	TitleCertificate string       `json:"landTitleCertification,omitempty"`
	Attachments      []Attachment `json:"additionalDocuments,omitempty"`
	Documents        []Document   `json:"ownershipDocuments,omitempty"`
	Coordinates      Coordinates  `json:"coordinates"`
	Contact          Contact      `json:"contact"`
	UploadedBy       Uploader     `json:"uploadedBy"`
	CreatedAt        time.Time    `json:"createdAt"`
	Featured         bool         `json:"featured,omitempty"`

	Origin Origin `json:"-"`
}

// UnmarshalJSON accepts string timestamps in any of the layouts understood
// by ParseTimestamp and the legacy proofDocument field.
func (l *Listing) UnmarshalJSON(data []byte) error {
	type plain Listing
	aux := struct {
		*plain
		CreatedAt     string `json:"createdAt"`
		ProofDocument string `json:"proofDocument"`
	}{plain: (*plain)(l)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.CreatedAt == "" {
		return fmt.Errorf("listing %q: missing createdAt", l.ID)
	}
	ts, err := ParseTimestamp(aux.CreatedAt)
	if err != nil {
		return fmt.Errorf("listing %q: %w", l.ID, err)
	}
	l.CreatedAt = ts

	if l.TitleCertificate == "" {
		l.TitleCertificate = aux.ProofDocument
	}
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats found in stored and seed data.
// Timestamps without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Clone returns a copy of l that shares no slices with it.
func (l *Listing) Clone() *Listing {
	c := *l
	c.Images = slices.Clone(l.Images)
	c.Attachments = slices.Clone(l.Attachments)
	c.Documents = slices.Clone(l.Documents)
	return &c
}

// Draft holds the caller-supplied fields of a new listing. The Store
// assigns the id and timestamp.
type Draft struct {
	Title            string       `json:"title"`
	Location         string       `json:"location"`
	Price            float64      `json:"price"`
	Category         Category     `json:"propertyType"`
	Intent           Intent       `json:"purpose"`
	Description      string       `json:"description"`
	Images           []string     `json:"images"`
	Video            string       `json:"video,omitempty"`
	TitleCertificate string       `json:"landTitleCertification,omitempty"`
	Attachments      []Attachment `json:"additionalDocuments,omitempty"`
	Documents        []Document   `json:"ownershipDocuments,omitempty"`
	Coordinates      Coordinates  `json:"coordinates"`
	Contact          Contact      `json:"contact"`
	UploadedBy       Uploader     `json:"uploadedBy"`
	Featured         bool         `json:"featured,omitempty"`
}

// Validate checks the rules enforced on submissions before they reach
// the Store.
func (d Draft) Validate() error {
	var problems []string
	if strings.TrimSpace(d.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(d.Location) == "" {
		problems = append(problems, "location is required")
	}
	if d.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	if !ValidCategory(string(d.Category)) {
		problems = append(problems, fmt.Sprintf("invalid property type %q (use land or house)", d.Category))
	}
	if !ValidIntent(string(d.Intent)) {
		problems = append(problems, fmt.Sprintf("invalid purpose %q (use buy or rent)", d.Intent))
	}
	if d.UploadedBy != "" && !ValidUploader(string(d.UploadedBy)) {
		problems = append(problems, fmt.Sprintf("invalid uploadedBy %q (use admin or user)", d.UploadedBy))
	}
	if len(d.Images) == 0 {
		problems = append(problems, "at least one image is required")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Build returns the listing the draft becomes under the given identity.
func (d Draft) Build(id string, createdAt time.Time, origin Origin) *Listing {
	uploadedBy := d.UploadedBy
	if uploadedBy == "" {
		uploadedBy = UploaderUser
	}
	l := &Listing{
		ID:               id,
		Title:            d.Title,
		Location:         d.Location,
		Price:            d.Price,
		Category:         d.Category,
		Intent:           d.Intent,
		Description:      d.Description,
		Images:           d.Images,
		Video:            d.Video,
		TitleCertificate: d.TitleCertificate,
		Attachments:      d.Attachments,
		Documents:        d.Documents,
		Coordinates:      d.Coordinates,
		Contact:          d.Contact,
		UploadedBy:       uploadedBy,
		CreatedAt:        createdAt,
		Featured:         d.Featured,
		Origin:           origin,
	}
	if l.Images == nil {
		l.Images = []string{}
	}
	return l.Clone()
}
