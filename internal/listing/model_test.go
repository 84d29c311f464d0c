package listing

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestDraftValidate(t *testing.T) {
	valid := Draft{
		Title:    "Plot",
		Location: "Gumani",
		Price:    1000,
		Category: CategoryLand,
		Intent:   IntentBuy,
		Images:   []string{"/a.jpg"},
	}

	tests := []struct {
		name    string
		mutate  func(d *Draft)
		wantErr string
	}{
		{"valid", func(d *Draft) {}, ""},
		{"missing title", func(d *Draft) { d.Title = "  " }, "title is required"},
		{"missing location", func(d *Draft) { d.Location = "" }, "location is required"},
		{"negative price", func(d *Draft) { d.Price = -1 }, "price must not be negative"},
		{"bad category", func(d *Draft) { d.Category = "farm" }, "invalid property type"},
		{"bad intent", func(d *Draft) { d.Intent = "" }, "invalid purpose"},
		{"bad uploader", func(d *Draft) { d.UploadedBy = "robot" }, "invalid uploadedBy"},
		{"no images", func(d *Draft) { d.Images = nil }, "at least one image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			d.Images = append([]string(nil), valid.Images...)
			tt.mutate(&d)
			err := d.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestListingJSONRoundTripKeepsFieldNames(t *testing.T) {
	l := &Listing{
		ID:               "uploaded-1",
		Title:            "House",
		Category:         CategoryHouse,
		Intent:           IntentRent,
		Images:           []string{},
		TitleCertificate: "/cert.pdf",
		UploadedBy:       UploaderUser,
		CreatedAt:        time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Origin:           OriginUser,
	}
	b, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, key := range []string{`"propertyType":"house"`, `"purpose":"rent"`, `"landTitleCertification":"/cert.pdf"`, `"createdAt":"2024-01-02T03:04:05Z"`} {
		if !strings.Contains(s, key) {
			t.Errorf("marshalled listing missing %s: %s", key, s)
		}
	}
	if strings.Contains(s, "Origin") || strings.Contains(s, `"origin"`) {
		t.Errorf("origin leaked into JSON: %s", s)
	}

	var back Listing
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.CreatedAt.Equal(l.CreatedAt) || back.TitleCertificate != l.TitleCertificate {
		t.Errorf("round trip mismatch: %+v", back)
	}
}
