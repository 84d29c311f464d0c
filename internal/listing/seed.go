package listing

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
)

//go:embed seed.json
var seedJSON []byte

// DefaultSeed returns the built-in seed catalog.
func DefaultSeed() ([]*Listing, error) {
	return parseSeed(seedJSON)
}

// LoadSeed reads a seed catalog from r. Every entry must have a valid
// category and intent, a timestamp, and an id outside the upload namespace.
func LoadSeed(r io.Reader) ([]*Listing, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading seed catalog: %w", err)
	}
	return parseSeed(data)
}

func parseSeed(data []byte) ([]*Listing, error) {
	var list []*Listing
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing seed catalog: %w", err)
	}

	seen := make(map[string]bool, len(list))
	for i, l := range list {
		if l == nil {
			return nil, fmt.Errorf("seed entry %d: null", i)
		}
		switch {
		case l.ID == "":
			return nil, fmt.Errorf("seed entry %d: missing id", i)
		case IsUserID(l.ID):
			return nil, fmt.Errorf("seed entry %q: id uses reserved prefix %q", l.ID, UserIDPrefix)
		case seen[l.ID]:
			return nil, fmt.Errorf("seed entry %q: duplicate id", l.ID)
		case !ValidCategory(string(l.Category)):
			return nil, fmt.Errorf("seed entry %q: invalid property type %q", l.ID, l.Category)
		case !ValidIntent(string(l.Intent)):
			return nil, fmt.Errorf("seed entry %q: invalid purpose %q", l.ID, l.Intent)
		}
		seen[l.ID] = true
		if l.Images == nil {
			l.Images = []string{}
		}
		if l.UploadedBy == "" {
			l.UploadedBy = UploaderAdmin
		}
		l.Origin = OriginSeed
	}
	return list, nil
}
