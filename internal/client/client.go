// Package client provides an HTTP client for the King Lemuel Properties API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kinglemuel/klp/internal/analytics"
	"github.com/kinglemuel/klp/internal/inquiry"
	"github.com/kinglemuel/klp/internal/listing"
	"github.com/kinglemuel/klp/internal/remote"
)

// Client is an HTTP client for the site API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// ListOptions controls filtering for ListProperties.
type ListOptions struct {
	Location string
	Type     string
	Purpose  string
	MinPrice float64
	MaxPrice float64
	Featured bool
	Query    string
}

func (o ListOptions) values() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("location", o.Location)
	set("type", o.Type)
	set("purpose", o.Purpose)
	set("q", o.Query)
	if o.MinPrice > 0 {
		q.Set("min_price", strconv.FormatFloat(o.MinPrice, 'f', -1, 64))
	}
	if o.MaxPrice > 0 {
		q.Set("max_price", strconv.FormatFloat(o.MaxPrice, 'f', -1, 64))
	}
	if o.Featured {
		q.Set("featured", "true")
	}
	return q
}

// ListProperties returns the visible listings, optionally filtered.
func (c *Client) ListProperties(opts ListOptions) ([]*listing.Listing, error) {
	path := "/api/properties"
	if q := opts.values(); len(q) > 0 {
		path += "?" + q.Encode()
	}

	var list []*listing.Listing
	if err := c.get(path, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetProperty returns one listing.
func (c *Client) GetProperty(id string) (*listing.Listing, error) {
	var l listing.Listing
	if err := c.get("/api/properties/"+url.PathEscape(id), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// AddProperty submits a new listing.
func (c *Client) AddProperty(d listing.Draft) (*listing.Listing, error) {
	var l listing.Listing
	if err := c.send(http.MethodPost, "/api/properties", d, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// DeleteProperty removes an uploaded listing.
func (c *Client) DeleteProperty(id string) error {
	return c.send(http.MethodDelete, "/api/properties/"+url.PathEscape(id), nil, nil)
}

// ClearUploads removes every uploaded listing and reports whether there
// was anything to remove.
func (c *Client) ClearUploads() (bool, error) {
	var resp struct {
		Cleared bool `json:"cleared"`
	}
	if err := c.send(http.MethodDelete, "/api/properties", nil, &resp); err != nil {
		return false, err
	}
	return resp.Cleared, nil
}

// AdminStatus is the seed visibility flag and listing counts.
type AdminStatus struct {
	SeedHidden    bool `json:"seed_hidden"`
	SeedCount     int  `json:"seed_count"`
	UploadedCount int  `json:"uploaded_count"`
}

// RemoveAll hides the seed catalog and clears every upload.
func (c *Client) RemoveAll() (*AdminStatus, error) {
	var s AdminStatus
	if err := c.send(http.MethodPost, "/api/admin/remove-all", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RestoreSeed makes the seed catalog visible again.
func (c *Client) RestoreSeed() (*AdminStatus, error) {
	var s AdminStatus
	if err := c.send(http.MethodPost, "/api/admin/restore", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Status returns the admin status.
func (c *Client) Status() (*AdminStatus, error) {
	var s AdminStatus
	if err := c.get("/api/admin/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListInquiries returns inquiries, optionally filtered by status and listing.
func (c *Client) ListInquiries(status, listingID string) ([]*inquiry.Inquiry, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if listingID != "" {
		q.Set("listing_id", listingID)
	}
	path := "/api/inquiries"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var list []*inquiry.Inquiry
	if err := c.get(path, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateInquiry moves an inquiry to a new status.
func (c *Client) UpdateInquiry(id, status string) (*inquiry.Inquiry, error) {
	var inq inquiry.Inquiry
	body := map[string]string{"status": status}
	if err := c.send(http.MethodPatch, "/api/inquiries/"+url.PathEscape(id), body, &inq); err != nil {
		return nil, err
	}
	return &inq, nil
}

// InquiryStats returns inquiry counts for the last days days.
func (c *Client) InquiryStats(days int) (*inquiry.Stats, error) {
	var s inquiry.Stats
	if err := c.get(fmt.Sprintf("/api/inquiries/stats?days=%d", days), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// TrackView records a page view of a listing.
func (c *Client) TrackView(id string) error {
	return c.send(http.MethodPost, "/api/properties/"+url.PathEscape(id)+"/view", nil, nil)
}

// Analytics returns the site summary for the last days days.
func (c *Client) Analytics(days int) (*analytics.Summary, error) {
	var s analytics.Summary
	if err := c.get(fmt.Sprintf("/api/analytics?period=%d", days), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Dashboard returns the admin landing summary.
func (c *Client) Dashboard() (*analytics.Dashboard, error) {
	var d analytics.Dashboard
	if err := c.get("/api/analytics/dashboard", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListingViews returns the page views of one listing over the last days
// days.
func (c *Client) ListingViews(id string, days int) (*analytics.ListingViews, error) {
	var v analytics.ListingViews
	path := fmt.Sprintf("/api/properties/%s/views?period=%d", url.PathEscape(id), days)
	if err := c.get(path, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// RemoteList returns the listings of the remote service, including the
// soft-deleted ones when includeInactive is set.
func (c *Client) RemoteList(includeInactive bool) ([]remote.Entry, error) {
	path := "/api/remote/properties"
	if includeInactive {
		path += "?include_inactive=true"
	}
	var entries []remote.Entry
	if err := c.get(path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RemoteUpdate changes the fields of p on a remote listing.
func (c *Client) RemoteUpdate(id string, p listing.Patch) (*listing.Listing, error) {
	var l listing.Listing
	if err := c.send(http.MethodPatch, "/api/remote/properties/"+url.PathEscape(id), p, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// RemoteDelete soft-deletes a remote listing.
func (c *Client) RemoteDelete(id string) error {
	return c.send(http.MethodDelete, "/api/remote/properties/"+url.PathEscape(id), nil, nil)
}

// RemoteRestore brings back a soft-deleted remote listing.
func (c *Client) RemoteRestore(id string) error {
	return c.send(http.MethodPost, "/api/remote/properties/"+url.PathEscape(id)+"/restore", nil, nil)
}

// Token exchanges admin credentials for a new API key.
func (c *Client) Token(email, password, name string) (string, error) {
	body := map[string]string{"email": email, "password": password, "name": name}
	var resp struct {
		APIKey string `json:"api_key"`
	}
	if err := c.send(http.MethodPost, "/auth/token", body, &resp); err != nil {
		return "", err
	}
	return resp.APIKey, nil
}

// Logout revokes the client's API key on the server.
func (c *Client) Logout() error {
	return c.send(http.MethodPost, "/auth/logout", nil, nil)
}

// get performs a GET request and decodes the response.
func (c *Client) get(path string, result any) error {
	return c.send(http.MethodGet, path, nil, result)
}

// send performs a request with an optional JSON body and decodes the
// response.
func (c *Client) send(method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, result)
}

// do executes an HTTP request with auth header and handles errors.
func (c *Client) do(req *http.Request, result any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "err", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		msg := "server error: " + http.StatusText(resp.StatusCode)
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			msg = errResp.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
