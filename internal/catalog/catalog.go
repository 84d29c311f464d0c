// Package catalog chooses where listing reads are served from. Sources are
// tried in order and the first one that answers with data wins; results
// from different sources are never merged.
package catalog

import (
	"context"
	"log/slog"

	"github.com/kinglemuel/klp/internal/listing"
)

// Source is one place listings can be read from.
type Source interface {
	Name() string
	Listings(ctx context.Context) ([]*listing.Listing, error)
	Listing(ctx context.Context, id string) (*listing.Listing, error)
}

// Chain reads from the first source that succeeds with a non-empty result.
type Chain struct {
	sources []Source
}

// NewChain creates a chain over sources, tried in the given order.
func NewChain(sources ...Source) *Chain {
	return &Chain{sources: sources}
}

// Listings returns the listings of the first source that answers without
// error and with at least one listing, along with that source's name.
// If every source fails or is empty the result is empty.
func (c *Chain) Listings(ctx context.Context) ([]*listing.Listing, string) {
	for _, s := range c.sources {
		list, err := s.Listings(ctx)
		if err != nil {
			slog.Warn("listing source failed, falling back", "source", s.Name(), "err", err)
			continue
		}
		if len(list) > 0 {
			return list, s.Name()
		}
	}
	return []*listing.Listing{}, ""
}

// Listing looks id up in each source in turn and returns the first hit.
func (c *Chain) Listing(ctx context.Context, id string) (*listing.Listing, string) {
	for _, s := range c.sources {
		l, err := s.Listing(ctx, id)
		if err != nil {
			slog.Warn("listing source failed, falling back", "source", s.Name(), "id", id, "err", err)
			continue
		}
		if l != nil {
			return l, s.Name()
		}
	}
	return nil, ""
}

// Local serves reads from the listing store. It never fails.
type Local struct {
	Store *listing.Store
}

func (Local) Name() string { return "local" }

func (l Local) Listings(context.Context) ([]*listing.Listing, error) {
	return l.Store.List(), nil
}

func (l Local) Listing(_ context.Context, id string) (*listing.Listing, error) {
	return l.Store.Get(id), nil
}

// RemoteClient is the part of the remote service client a Remote source
// needs.
type RemoteClient interface {
	List(ctx context.Context) ([]*listing.Listing, error)
	Get(ctx context.Context, id string) (*listing.Listing, error)
}

// Remote serves reads from the hosted listing service.
type Remote struct {
	Client RemoteClient
}

func (Remote) Name() string { return "remote" }

func (r Remote) Listings(ctx context.Context) ([]*listing.Listing, error) {
	return r.Client.List(ctx)
}

func (r Remote) Listing(ctx context.Context, id string) (*listing.Listing, error) {
	return r.Client.Get(ctx, id)
}
