package broadcaster

import (
	"context"
	"sync"
	"time"

	"cattle-auction-service/internal/ports/outbound"

	"github.com/rs/zerolog"
)

// LocalBroadcaster fans events out to in-process subscribers. Slow
// subscribers lose events instead of blocking the publisher.
type LocalBroadcaster struct {
	subscribers map[string]chan outbound.Event
	mu          sync.RWMutex
	closed      bool
	logger      zerolog.Logger
}

type LocalBroadcasterParams struct {
	Logger zerolog.Logger
}

var _ outbound.Broadcaster = (*LocalBroadcaster)(nil)

func NewLocalBroadcaster(params LocalBroadcasterParams) *LocalBroadcaster {
	return &LocalBroadcaster{
		subscribers: make(map[string]chan outbound.Event),
		logger:      params.Logger.With().Str("component", "local_broadcaster").Logger(),
	}
}

// Subscribe registers eventChan under subscriberID. Subscribing twice with
// the same id keeps the first channel.
func (b *LocalBroadcaster) Subscribe(ctx context.Context, subscriberID string, eventChan chan outbound.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBroadcasterClosed
	}
	if _, exists := b.subscribers[subscriberID]; exists {
		b.logger.Debug().Str("subscriber_id", subscriberID).Msg("Subscriber already registered")
		return nil
	}
	b.subscribers[subscriberID] = eventChan

	b.logger.Debug().Str("subscriber_id", subscriberID).Int("subscribers", len(b.subscribers)).Msg("Subscriber registered")
	return nil
}

// Unsubscribe removes the subscriber and closes its channel
func (b *LocalBroadcaster) Unsubscribe(ctx context.Context, subscriberID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if eventChan, exists := b.subscribers[subscriberID]; exists {
		close(eventChan)
		delete(b.subscribers, subscriberID)
		b.logger.Debug().Str("subscriber_id", subscriberID).Msg("Subscriber removed")
	}
	return nil
}

// Publish delivers event to every subscriber without blocking
func (b *LocalBroadcaster) Publish(ctx context.Context, event outbound.Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBroadcasterClosed
	}

	delivered := 0
	for subscriberID, eventChan := range b.subscribers {
		select {
		case eventChan <- event:
			delivered++
		default:
			b.logger.Warn().Str("subscriber_id", subscriberID).Msg("Subscriber channel full, dropping event")
		}
	}

	b.logger.Debug().
		Str("event_type", string(event.Type)).
		Int("lot_id", event.LotID).
		Int("delivered", delivered).
		Msg("Published lot event")
	return nil
}

// Close closes every subscriber channel; later calls are rejected
func (b *LocalBroadcaster) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for subscriberID, eventChan := range b.subscribers {
		close(eventChan)
		delete(b.subscribers, subscriberID)
	}
	return nil
}
