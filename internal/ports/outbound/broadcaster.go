package outbound

import (
	"context"
)

// EventType represents the type of event being broadcasted
type EventType string

const (
	EventTypeLotCreated   EventType = "lot.created"
	EventTypeBidPlaced    EventType = "bid.placed"
	EventTypeLotClosed    EventType = "lot.closed"
	EventTypeLotWithdrawn EventType = "lot.withdrawn"
)

// Event represents a broadcast event. Sequence increases with every accepted
// mutation; events may be delivered out of order, so consumers drop any event
// whose sequence is lower than the last one applied.
type Event struct {
	Type      EventType              `json:"type"`
	Sequence  uint64                 `json:"sequence"`
	LotID     int                    `json:"lot_id"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// Broadcaster defines the interface for broadcasting lot events
type Broadcaster interface {
	// Subscribe registers a subscriber; every published event is delivered to eventChan
	Subscribe(ctx context.Context, subscriberID string, eventChan chan Event) error

	// Unsubscribe removes a subscriber and closes its channel
	Unsubscribe(ctx context.Context, subscriberID string) error

	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, event Event) error

	// Close releases every subscription
	Close() error
}
