package listing

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Storage keys. They match the keys the site used in browser storage so
// exported data can be loaded as-is.
const (
	ListingsKey   = "king-limuel-properties"
	SeedHiddenKey = "hide-default-properties"
)

// KV is the key-value surface the Store persists through. Get reports
// ok=false for a key that was never set.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Updater is implemented by KV backends that can run a read-modify-write
// of one key atomically. When the Store's KV does not implement it,
// concurrent writers race and the last write wins.
type Updater interface {
	Update(key string, fn func(old string, ok bool) (string, error)) error
}

// Store merges the seed catalog with user uploads and owns the seed
// visibility flag.
type Store struct {
	kv   KV
	seed []*Listing
	now  func() time.Time
}

// NewStore creates a Store over kv. The seed slice is copied and tagged
// with OriginSeed.
func NewStore(kv KV, seed []*Listing) *Store {
	s := &Store{kv: kv, now: time.Now}
	for _, l := range seed {
		c := l.Clone()
		c.Origin = OriginSeed
		s.seed = append(s.seed, c)
	}
	return s
}

// List returns every visible listing, newest first. Ties keep insertion
// order: seed listings, then uploads in the order they were added.
// A storage failure degrades to the seed catalog (or nothing, if hidden).
func (s *Store) List() []*Listing {
	uploads, err := s.uploads()
	if err != nil {
		slog.Warn("reading uploaded listings", "err", err)
		uploads = nil
	}

	var all []*Listing
	if !s.SeedHidden() {
		for _, l := range s.seed {
			all = append(all, l.Clone())
		}
	}
	all = append(all, uploads...)

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all
}

// Get returns the visible listing with the given id, or nil.
func (s *Store) Get(id string) *Listing {
	for _, l := range s.List() {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Counts returns how many seed and uploaded listings are currently visible.
func (s *Store) Counts() (seed, uploaded int) {
	for _, l := range s.List() {
		if l.Origin == OriginSeed {
			seed++
		} else {
			uploaded++
		}
	}
	return seed, uploaded
}

// Add stores a new user listing built from d. It does not validate d.
func (s *Store) Add(d Draft) (*Listing, error) {
	now := s.now()
	l := d.Build(newID(now), now, OriginUser)

	err := s.modify(func(list []*Listing) ([]*Listing, bool) {
		return append(list, l), true
	})
	if err != nil {
		return nil, fmt.Errorf("adding listing: %w", err)
	}
	return l.Clone(), nil
}

// Delete removes the uploaded listing with the given id. It returns false
// when no such upload exists and ErrImmutable for any id outside the
// upload namespace.
func (s *Store) Delete(id string) (bool, error) {
	if !IsUserID(id) {
		return false, fmt.Errorf("deleting %s: %w", id, ErrImmutable)
	}

	var found bool
	err := s.modify(func(list []*Listing) ([]*Listing, bool) {
		kept := list[:0]
		for _, l := range list {
			if l.ID == id {
				found = true
				continue
			}
			kept = append(kept, l)
		}
		return kept, found
	})
	if err != nil {
		return false, fmt.Errorf("deleting %s: %w", id, err)
	}
	return found, nil
}

// DeleteAllUploads clears every uploaded listing. It returns false when
// there was nothing to clear. The seed visibility flag is not touched.
// Undecodable stored data is reported as ErrPersistence and kept.
func (s *Store) DeleteAllUploads() (bool, error) {
	var cleared bool
	err := s.modify(func(list []*Listing) ([]*Listing, bool) {
		cleared = len(list) > 0
		return nil, cleared
	})
	if err != nil {
		return false, fmt.Errorf("clearing uploads: %w", err)
	}
	return cleared, nil
}

// RemoveAll hides the seed catalog and then clears every upload.
func (s *Store) RemoveAll() error {
	if err := s.kv.Set(SeedHiddenKey, "true"); err != nil {
		return fmt.Errorf("hiding seed listings: %w: %v", ErrPersistence, err)
	}
	if err := s.kv.Set(ListingsKey, "[]"); err != nil {
		return fmt.Errorf("clearing uploads: %w: %v", ErrPersistence, err)
	}
	return nil
}

// RestoreSeed makes the seed catalog visible again. Uploads are untouched.
func (s *Store) RestoreSeed() error {
	if err := s.kv.Set(SeedHiddenKey, "false"); err != nil {
		return fmt.Errorf("restoring seed listings: %w: %v", ErrPersistence, err)
	}
	return nil
}

// SeedHidden reports whether the seed catalog is hidden. Unset or
// unreadable means visible.
func (s *Store) SeedHidden() bool {
	v, ok, err := s.kv.Get(SeedHiddenKey)
	if err != nil {
		slog.Warn("reading seed visibility flag", "err", err)
		return false
	}
	return ok && v == "true"
}

// uploads reads the stored upload collection.
func (s *Store) uploads() ([]*Listing, error) {
	raw, ok, err := s.kv.Get(ListingsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return decodeUploads(raw)
}

// modify runs fn over the stored uploads and writes the result back when
// fn reports a change. Stored data that fails to decode is left in place
// and the write fails; only RemoveAll resets it.
func (s *Store) modify(fn func([]*Listing) ([]*Listing, bool)) error {
	apply := func(raw string, ok bool) (string, bool, error) {
		var list []*Listing
		if ok {
			decoded, err := decodeUploads(raw)
			if err != nil {
				return "", false, err
			}
			list = decoded
		}
		next, changed := fn(list)
		if !changed {
			return raw, false, nil
		}
		out, err := encodeUploads(next)
		if err != nil {
			return "", false, err
		}
		return out, true, nil
	}

	if u, ok := s.kv.(Updater); ok {
		err := u.Update(ListingsKey, func(old string, ok bool) (string, error) {
			next, changed, err := apply(old, ok)
			if err != nil {
				return "", err
			}
			if !changed && !ok {
				return "[]", nil
			}
			return next, nil
		})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return nil
	}

	raw, ok, err := s.kv.Get(ListingsKey)
	if err != nil {
		return fmt.Errorf("%w: reading uploads: %v", ErrPersistence, err)
	}
	next, changed, err := apply(raw, ok)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !changed {
		return nil
	}
	if err := s.kv.Set(ListingsKey, next); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func decodeUploads(raw string) ([]*Listing, error) {
	var list []*Listing
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decoding uploaded listings: %w", err)
	}
	for _, l := range list {
		if l == nil {
			return nil, fmt.Errorf("decoding uploaded listings: null entry")
		}
		l.Origin = OriginUser
	}
	return list, nil
}

func encodeUploads(list []*Listing) (string, error) {
	if list == nil {
		list = []*Listing{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("encoding uploaded listings: %w", err)
	}
	return string(b), nil
}

// newID returns a fresh upload id. Ids are unique in practice, not by
// construction.
func newID(now time.Time) string {
	return fmt.Sprintf("%s%d-%s", UserIDPrefix, now.UnixMilli(), uuid.NewString()[:8])
}
