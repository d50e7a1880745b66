package broadcaster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"cattle-auction-service/internal/ports/outbound"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultChannel is the Redis channel carrying lot events
const DefaultChannel = "auction:lots"

// ErrBroadcasterClosed is returned once Close has been called
var ErrBroadcasterClosed = errors.New("broadcaster closed")

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan outbound.Event
	done   chan struct{}
}

// RedisBroadcaster implements the broadcaster interface using Redis pub/sub.
// Each subscriber owns a pubsub connection on the lot channel so external
// consumers can follow the same stream.
type RedisBroadcaster struct {
	client        *redis.Client
	channel       string
	subscriptions map[string]*redisSubscription // subscriberID -> subscription
	mu            sync.Mutex
	closed        bool
	ctx           context.Context
	cancel        context.CancelFunc
	logger        zerolog.Logger
}

type RedisBroadcasterParams struct {
	RedisClient *redis.Client
	Channel     string
	Logger      zerolog.Logger
}

var _ outbound.Broadcaster = (*RedisBroadcaster)(nil)

func NewBroadcaster(params RedisBroadcasterParams) *RedisBroadcaster {
	ctx, cancel := context.WithCancel(context.Background())

	channel := params.Channel
	if channel == "" {
		channel = DefaultChannel
	}

	return &RedisBroadcaster{
		client:        params.RedisClient,
		channel:       channel,
		subscriptions: make(map[string]*redisSubscription),
		ctx:           ctx,
		cancel:        cancel,
		logger:        params.Logger.With().Str("component", "redis_broadcaster").Str("channel", channel).Logger(),
	}
}

// Subscribe opens a pubsub connection for the subscriber and forwards every
// lot event to eventChan
func (r *RedisBroadcaster) Subscribe(ctx context.Context, subscriberID string, eventChan chan outbound.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrBroadcasterClosed
	}
	if _, exists := r.subscriptions[subscriberID]; exists {
		r.logger.Info().Str("subscriber_id", subscriberID).Msg("Subscriber already registered")
		return nil
	}

	pubsub := r.client.Subscribe(ctx, r.channel)
	// Wait for the subscription confirmation so no event published after
	// Subscribe returns is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		r.logger.Error().Err(err).Str("subscriber_id", subscriberID).Msg("Failed to subscribe to Redis channel")
		return fmt.Errorf("failed to subscribe to Redis channel: %w", err)
	}

	sub := &redisSubscription{
		pubsub: pubsub,
		events: eventChan,
		done:   make(chan struct{}),
	}
	r.subscriptions[subscriberID] = sub

	// Start goroutine to listen for Redis messages and forward to local channel
	go r.listenForRedisMessages(subscriberID, sub)

	r.logger.Info().Str("subscriber_id", subscriberID).Msg("Subscriber registered via Redis")
	return nil
}

// Unsubscribe closes the subscriber's pubsub connection and its channel
func (r *RedisBroadcaster) Unsubscribe(ctx context.Context, subscriberID string) error {
	r.mu.Lock()
	sub, exists := r.subscriptions[subscriberID]
	delete(r.subscriptions, subscriberID)
	r.mu.Unlock()

	if !exists {
		return nil
	}

	r.release(subscriberID, sub)
	r.logger.Info().Str("subscriber_id", subscriberID).Msg("Subscriber removed")
	return nil
}

// Publish publishes an event to the lot channel
func (r *RedisBroadcaster) Publish(ctx context.Context, event outbound.Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Publish to Redis
	result := r.client.Publish(ctx, r.channel, eventJSON)
	if err := result.Err(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to publish to Redis")
		return fmt.Errorf("failed to publish to Redis: %w", err)
	}

	r.logger.Debug().
		Str("event_type", string(event.Type)).
		Int("lot_id", event.LotID).
		Int64("subscriber_count", result.Val()).
		Msg("Published lot event")

	return nil
}

// listenForRedisMessages listens for Redis messages and forwards them to the local channel
func (r *RedisBroadcaster) listenForRedisMessages(subscriberID string, sub *redisSubscription) {
	defer close(sub.done)
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error().Interface("panic", err).Str("subscriber_id", subscriberID).Msg("Redis message listener panic")
		}
	}()

	ch := sub.pubsub.Channel()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				r.logger.Debug().Str("subscriber_id", subscriberID).Msg("Redis channel closed for subscriber")
				return
			}

			var event outbound.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.logger.Error().Err(err).Str("subscriber_id", subscriberID).Msg("Failed to unmarshal Redis message")
				continue
			}

			select {
			case sub.events <- event:
			default:
				r.logger.Warn().Str("subscriber_id", subscriberID).Msg("Subscriber channel full, dropping event")
			}

		case <-r.ctx.Done():
			return
		}
	}
}

// release stops the listener before closing the local channel so the
// listener never sends on a closed channel
func (r *RedisBroadcaster) release(subscriberID string, sub *redisSubscription) {
	if err := sub.pubsub.Close(); err != nil {
		r.logger.Error().Err(err).Str("subscriber_id", subscriberID).Msg("Error closing Redis pubsub")
	}
	<-sub.done
	close(sub.events)
}

func (r *RedisBroadcaster) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	subscriptions := r.subscriptions
	r.subscriptions = make(map[string]*redisSubscription)
	r.mu.Unlock()

	r.cancel()
	for subscriberID, sub := range subscriptions {
		r.release(subscriberID, sub)
	}

	return r.client.Close()
}
