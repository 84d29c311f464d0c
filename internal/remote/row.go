package remote

import (
	"encoding/json"
	"fmt"

	"github.com/kinglemuel/klp/internal/listing"
)

// row is a properties table row as PostgREST returns it.
type row struct {
	ID                 string           `json:"id"`
	Title              string           `json:"title"`
	Location           string           `json:"location"`
	Price              json.Number      `json:"price"`
	PropertyType       string           `json:"property_type"`
	Purpose            string           `json:"purpose"`
	Description        string           `json:"description"`
	Images             []string         `json:"images"`
	Video              *string          `json:"video"`
	ProofDocument      *string          `json:"proof_document"`
	Contact            *listing.Contact `json:"contact"`
	UploadedBy         string           `json:"uploaded_by"`
	CreatedAt          string           `json:"created_at"`
	Featured           *bool            `json:"featured"`
	IsActive           *bool            `json:"is_active"`
	OwnershipDocuments []docRow         `json:"ownership_documents"`
}

// docRow is an ownership_documents table row.
type docRow struct {
	PropertyID  string `json:"property_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// insertRow is the body of a properties insert.
type insertRow struct {
	Title         string          `json:"title"`
	Location      string          `json:"location"`
	Price         float64         `json:"price"`
	PropertyType  string          `json:"property_type"`
	Purpose       string          `json:"purpose"`
	Description   string          `json:"description"`
	Images        []string        `json:"images"`
	Video         *string         `json:"video"`
	ProofDocument *string         `json:"proof_document"`
	Contact       listing.Contact `json:"contact"`
	UploadedBy    string          `json:"uploaded_by"`
	Featured      bool            `json:"featured"`
	IsActive      bool            `json:"is_active"`
}

func newInsertRow(d listing.Draft) insertRow {
	r := insertRow{
		Title:         d.Title,
		Location:      d.Location,
		Price:         d.Price,
		PropertyType:  string(d.Category),
		Purpose:       string(d.Intent),
		Description:   d.Description,
		Images:        d.Images,
		Video:         optional(d.Video),
		ProofDocument: optional(d.TitleCertificate),
		Contact:       d.Contact,
		UploadedBy:    string(d.UploadedBy),
		Featured:      d.Featured,
		IsActive:      true,
	}
	if r.Images == nil {
		r.Images = []string{}
	}
	if r.UploadedBy == "" {
		r.UploadedBy = string(listing.UploaderUser)
	}
	return r
}

// newUpdateRow maps the fields p sets to their column names.
func newUpdateRow(p listing.Patch) map[string]any {
	m := map[string]any{}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Location != nil {
		m["location"] = *p.Location
	}
	if p.Price != nil {
		m["price"] = *p.Price
	}
	if p.Category != nil {
		m["property_type"] = string(*p.Category)
	}
	if p.Intent != nil {
		m["purpose"] = string(*p.Intent)
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Images != nil {
		m["images"] = *p.Images
	}
	if p.Video != nil {
		m["video"] = optional(*p.Video)
	}
	if p.TitleCertificate != nil {
		m["proof_document"] = optional(*p.TitleCertificate)
	}
	if p.Contact != nil {
		m["contact"] = *p.Contact
	}
	if p.Featured != nil {
		m["featured"] = *p.Featured
	}
	return m
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// toListing maps a row to a listing. proof_document becomes the title
// certificate and a missing uploaded_by means a user upload.
func (r row) toListing() (*listing.Listing, error) {
	var price float64
	if r.Price != "" {
		p, err := r.Price.Float64()
		if err != nil {
			return nil, fmt.Errorf("property %s: invalid price %q", r.ID, r.Price)
		}
		price = p
	}

	createdAt, err := listing.ParseTimestamp(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", r.ID, err)
	}

	l := &listing.Listing{
		ID:          r.ID,
		Title:       r.Title,
		Location:    r.Location,
		Price:       price,
		Category:    listing.Category(r.PropertyType),
		Intent:      listing.Intent(r.Purpose),
		Description: r.Description,
		Images:      r.Images,
		UploadedBy:  listing.Uploader(r.UploadedBy),
		CreatedAt:   createdAt,
		Origin:      listing.OriginRemote,
	}
	if l.Images == nil {
		l.Images = []string{}
	}
	if r.Video != nil {
		l.Video = *r.Video
	}
	if r.ProofDocument != nil {
		l.TitleCertificate = *r.ProofDocument
	}
	if r.Contact != nil {
		l.Contact = *r.Contact
	}
	if l.UploadedBy == "" {
		l.UploadedBy = listing.UploaderUser
	}
	if r.Featured != nil {
		l.Featured = *r.Featured
	}
	for _, d := range r.OwnershipDocuments {
		l.Documents = append(l.Documents, listing.Document{
			Name:        d.Name,
			Type:        d.Type,
			URL:         d.URL,
			Description: d.Description,
		})
	}
	return l, nil
}

func toListings(rows []row) ([]*listing.Listing, error) {
	out := make([]*listing.Listing, 0, len(rows))
	for _, r := range rows {
		l, err := r.toListing()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
