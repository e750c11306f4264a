package realtime

import "github.com/armankhan8150/taskscape-front/internal/models"

// EventType classifies a change notification
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"

	// EventResync means the channel cannot account for a delivery gap and
	// every kind must be treated as possibly stale
	EventResync EventType = "resync"
)

// Event is a hint that a collection changed somewhere. Delivery is
// at-least-once and unordered, so consumers must treat events as
// invalidation hints, never as diffs.
type Event struct {
	Kind models.Kind `json:"kind,omitempty"`
	Type EventType   `json:"type"`
	ID   string      `json:"id,omitempty"`
}

// Feed is a push subscription to remote change notifications
type Feed interface {
	// Events yields change hints until the feed is closed
	Events() <-chan Event

	// Close releases the subscription. Events is closed afterwards.
	Close()
}
