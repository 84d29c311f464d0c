// Package remote talks to the hosted listing service (a Supabase project)
// over its PostgREST API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kinglemuel/klp/internal/listing"
)

// ErrNotFound is returned when no row matches the id a write names.
var ErrNotFound = errors.New("remote listing not found")

const listingSelect = "*,ownership_documents(*)"

// Client reads and writes listings in the remote service.
type Client struct {
	httpClient *http.Client
	restURL    string
	apiKey     string
}

// NewClient creates a client for the project at baseURL, authenticating
// with apiKey (the service role key for writes).
func NewClient(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("supabase URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("supabase API key is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		restURL:    strings.TrimRight(baseURL, "/") + "/rest/v1",
		apiKey:     apiKey,
	}, nil
}

// List returns every active listing, newest first.
func (c *Client) List(ctx context.Context) ([]*listing.Listing, error) {
	q := url.Values{
		"select":    {listingSelect},
		"is_active": {"eq.true"},
		"order":     {"created_at.desc"},
	}
	var rows []row
	if err := c.do(ctx, http.MethodGet, "/properties?"+q.Encode(), nil, &rows); err != nil {
		return nil, fmt.Errorf("listing remote properties: %w", err)
	}
	return toListings(rows)
}

// Get returns the active listing with the given id, or nil.
func (c *Client) Get(ctx context.Context, id string) (*listing.Listing, error) {
	q := url.Values{
		"select":    {listingSelect},
		"id":        {"eq." + id},
		"is_active": {"eq.true"},
	}
	var rows []row
	if err := c.do(ctx, http.MethodGet, "/properties?"+q.Encode(), nil, &rows); err != nil {
		return nil, fmt.Errorf("getting remote property %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].toListing()
}

// Create inserts a listing and then its ownership documents. A failure to
// insert the documents is logged and does not fail the call.
func (c *Client) Create(ctx context.Context, d listing.Draft) (*listing.Listing, error) {
	q := url.Values{"select": {listingSelect}}
	var rows []row
	if err := c.do(ctx, http.MethodPost, "/properties?"+q.Encode(), newInsertRow(d), &rows); err != nil {
		return nil, fmt.Errorf("creating remote property: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("creating remote property: empty response")
	}
	created := rows[0]

	if len(d.Documents) > 0 && created.ID != "" {
		docs := make([]docRow, len(d.Documents))
		for i, doc := range d.Documents {
			docs[i] = docRow{
				PropertyID:  created.ID,
				Name:        doc.Name,
				Type:        doc.Type,
				URL:         doc.URL,
				Description: doc.Description,
			}
		}
		if err := c.do(ctx, http.MethodPost, "/ownership_documents", docs, nil); err != nil {
			slog.Error("inserting ownership documents", "property_id", created.ID, "err", err)
		} else {
			created.OwnershipDocuments = docs
		}
	}

	return created.toListing()
}

// SoftDelete marks an active listing inactive. It returns ErrNotFound when
// no active row has the id.
func (c *Client) SoftDelete(ctx context.Context, id string) error {
	if err := c.setActive(ctx, id, false); err != nil {
		return fmt.Errorf("deactivating remote property %s: %w", id, err)
	}
	return nil
}

// Restore reactivates a soft-deleted listing. It returns ErrNotFound when
// no inactive row has the id.
func (c *Client) Restore(ctx context.Context, id string) error {
	if err := c.setActive(ctx, id, true); err != nil {
		return fmt.Errorf("restoring remote property %s: %w", id, err)
	}
	return nil
}

func (c *Client) setActive(ctx context.Context, id string, active bool) error {
	q := url.Values{
		"id":        {"eq." + id},
		"is_active": {"eq." + strconv.FormatBool(!active)},
	}
	var rows []row
	body := map[string]bool{"is_active": active}
	if err := c.do(ctx, http.MethodPatch, "/properties?"+q.Encode(), body, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// Entry is a listing as the admin sees it, with its active flag.
type Entry struct {
	Listing *listing.Listing `json:"listing"`
	Active  bool             `json:"active"`
}

// ListAll returns listings newest first for administration. Inactive rows
// are included only when includeInactive is set.
func (c *Client) ListAll(ctx context.Context, includeInactive bool) ([]Entry, error) {
	q := url.Values{
		"select": {listingSelect},
		"order":  {"created_at.desc"},
	}
	if !includeInactive {
		q.Set("is_active", "eq.true")
	}
	var rows []row
	if err := c.do(ctx, http.MethodGet, "/properties?"+q.Encode(), nil, &rows); err != nil {
		return nil, fmt.Errorf("listing remote properties: %w", err)
	}

	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		l, err := r.toListing()
		if err != nil {
			return nil, err
		}
		out = append(out, Entry{Listing: l, Active: r.IsActive == nil || *r.IsActive})
	}
	return out, nil
}

// Update applies p to the listing with the given id, active or not. When p
// sets Documents the stored documents are replaced; failures there are
// logged and do not fail the call.
func (c *Client) Update(ctx context.Context, id string, p listing.Patch) (*listing.Listing, error) {
	q := url.Values{
		"select": {listingSelect},
		"id":     {"eq." + id},
	}
	var rows []row
	body := newUpdateRow(p)
	if len(body) == 0 {
		if err := c.do(ctx, http.MethodGet, "/properties?"+q.Encode(), nil, &rows); err != nil {
			return nil, fmt.Errorf("getting remote property %s: %w", id, err)
		}
	} else if err := c.do(ctx, http.MethodPatch, "/properties?"+q.Encode(), body, &rows); err != nil {
		return nil, fmt.Errorf("updating remote property %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	updated := rows[0]

	if p.Documents != nil {
		docs := c.replaceDocuments(ctx, id, *p.Documents)
		if docs != nil {
			updated.OwnershipDocuments = docs
		}
	}

	return updated.toListing()
}

// replaceDocuments swaps the ownership documents of a listing and returns
// the new rows, or nil when the swap failed.
func (c *Client) replaceDocuments(ctx context.Context, id string, documents []listing.Document) []docRow {
	q := url.Values{"property_id": {"eq." + id}}
	if err := c.do(ctx, http.MethodDelete, "/ownership_documents?"+q.Encode(), nil, nil); err != nil {
		slog.Error("removing ownership documents", "property_id", id, "err", err)
		return nil
	}

	docs := make([]docRow, len(documents))
	for i, doc := range documents {
		docs[i] = docRow{
			PropertyID:  id,
			Name:        doc.Name,
			Type:        doc.Type,
			URL:         doc.URL,
			Description: doc.Description,
		}
	}
	if len(docs) > 0 {
		if err := c.do(ctx, http.MethodPost, "/ownership_documents", docs, nil); err != nil {
			slog.Error("inserting ownership documents", "property_id", id, "err", err)
			return nil
		}
	}
	return docs
}

// apiError is the error body PostgREST returns.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// do sends a request and decodes a JSON response into result.
func (c *Client) do(ctx context.Context, method, path string, body, result any) (err error) {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.restURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing body: %w", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if decErr := json.NewDecoder(resp.Body).Decode(&apiErr); decErr == nil && apiErr.Message != "" {
			return fmt.Errorf("%s (status %d)", apiErr.Message, resp.StatusCode)
		}
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
