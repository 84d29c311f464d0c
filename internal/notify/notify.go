// Package notify broadcasts "listings changed" events so other views can
// refresh. Delivery is fire-and-forget.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Operations carried in an Event.
const (
	OpAdded          = "added"
	OpDeleted        = "deleted"
	OpUploadsCleared = "uploads_cleared"
	OpRemovedAll     = "removed_all"
	OpRestored       = "restored"
	OpRemoteCreated  = "remote_created"
	OpRemoteUpdated  = "remote_updated"
	OpRemoteDeleted  = "remote_deleted"
	OpRemoteRestored = "remote_restored"
)

// DefaultSubject is the NATS subject events are published on.
const DefaultSubject = "klp.listings.changed"

// Event describes one change to the listing collection.
type Event struct {
	Op        string    `json:"op"`
	ListingID string    `json:"listing_id,omitempty"`
	At        time.Time `json:"at"`
}

// Notifier is told about every successful listing mutation.
type Notifier interface {
	ListingsChanged(op, listingID string)
}

// Nop discards events.
type Nop struct{}

func (Nop) ListingsChanged(string, string) {}

type publisher interface {
	Publish(subject string, data []byte) error
}

// NATS publishes events to a NATS subject.
type NATS struct {
	pub     publisher
	conn    *nats.Conn
	subject string
	now     func() time.Time
}

// ConnectNATS connects to the server at url and publishes on subject.
func ConnectNATS(url, subject string) (*NATS, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	nc, err := nats.Connect(url,
		nats.Name("klp"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "err", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}
	return &NATS{pub: nc, conn: nc, subject: subject, now: time.Now}, nil
}

// ListingsChanged publishes an event. Failures are logged.
func (n *NATS) ListingsChanged(op, listingID string) {
	data, err := json.Marshal(Event{Op: op, ListingID: listingID, At: n.now().UTC()})
	if err != nil {
		slog.Error("encoding listing event", "op", op, "err", err)
		return
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		slog.Warn("publishing listing event", "op", op, "listing_id", listingID, "err", err)
	}
}

// Close flushes pending events and closes the connection.
func (n *NATS) Close() error {
	if n.conn == nil {
		return nil
	}
	if err := n.conn.Drain(); err != nil {
		return fmt.Errorf("draining nats connection: %w", err)
	}
	return nil
}
