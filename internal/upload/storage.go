package upload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// DefaultBucket is the bucket listing media is stored in.
const DefaultBucket = "property-files"

// File describes a stored object.
type File struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// Storage uploads objects to a Supabase storage bucket.
type Storage struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	bucket     string
}

// NewStorage creates a storage client for the project at baseURL.
func NewStorage(baseURL, apiKey, bucket string) (*Storage, error) {
	if baseURL == "" || apiKey == "" {
		return nil, fmt.Errorf("supabase URL and API key are required for uploads")
	}
	if bucket == "" {
		bucket = DefaultBucket
	}
	return &Storage{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		bucket:     bucket,
	}, nil
}

// PublicURL returns the public URL of an object.
func (s *Storage) PublicURL(objectPath string) string {
	return s.baseURL + "/storage/v1/object/public/" + s.bucket + "/" + objectPath
}

// Put uploads body to objectPath. Existing objects are not overwritten.
func (s *Storage) Put(ctx context.Context, objectPath, contentType string, size int64, body io.Reader) (_ *File, err error) {
	endpoint := s.baseURL + "/storage/v1/object/" + s.bucket + "/" + objectPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", objectPath, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing body: %w", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if decErr := json.NewDecoder(resp.Body).Decode(&apiErr); decErr == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("uploading %s: %s (status %d)", objectPath, apiErr.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("uploading %s: unexpected status %d", objectPath, resp.StatusCode)
	}

	return &File{
		Name: path.Base(objectPath),
		Path: objectPath,
		URL:  s.PublicURL(objectPath),
		Size: size,
		Type: contentType,
	}, nil
}

// SignedUpload lets a browser upload one object directly to the bucket.
type SignedUpload struct {
	Path  string `json:"path"`
	Token string `json:"token"`
	URL   string `json:"url"`
}

// SignUpload asks the storage API for a one-time upload URL for
// objectPath.
func (s *Storage) SignUpload(ctx context.Context, objectPath string) (_ *SignedUpload, err error) {
	endpoint := s.baseURL + "/storage/v1/object/upload/sign/" + s.bucket + "/" + objectPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("apikey", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("signing %s: %w", objectPath, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing body: %w", closeErr)
		}
	}()

	var out struct {
		URL     string `json:"url"`
		Message string `json:"message"`
	}
	decErr := json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decErr == nil && out.Message != "" {
			return nil, fmt.Errorf("signing %s: %s (status %d)", objectPath, out.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("signing %s: unexpected status %d", objectPath, resp.StatusCode)
	}
	if decErr != nil {
		return nil, fmt.Errorf("decoding signed url: %w", decErr)
	}

	u, err := url.Parse(out.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing signed url: %w", err)
	}
	token := u.Query().Get("token")
	if token == "" {
		return nil, fmt.Errorf("signing %s: response has no token", objectPath)
	}

	return &SignedUpload{
		Path:  objectPath,
		Token: token,
		URL:   s.baseURL + "/storage/v1" + out.URL,
	}, nil
}
