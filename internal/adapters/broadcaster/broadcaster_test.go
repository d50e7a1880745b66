package broadcaster

import (
	"context"
	"os"
	"testing"
	"time"

	redisadapter "cattle-auction-service/internal/adapters/redis"
	"cattle-auction-service/internal/config"
	"cattle-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan outbound.Event) outbound.Event {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return outbound.Event{}
	}
}

func TestLocalBroadcasterFanOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := NewLocalBroadcaster(LocalBroadcasterParams{Logger: zerolog.Nop()})

	first := make(chan outbound.Event, 4)
	second := make(chan outbound.Event, 4)
	require.NoError(t, b.Subscribe(ctx, "first", first))
	require.NoError(t, b.Subscribe(ctx, "second", second))

	require.NoError(t, b.Publish(ctx, outbound.Event{Type: outbound.EventTypeLotCreated, LotID: 1}))

	for _, ch := range []chan outbound.Event{first, second} {
		event := receive(t, ch)
		assert.Equal(t, outbound.EventTypeLotCreated, event.Type)
		assert.Equal(t, 1, event.LotID)
		assert.NotZero(t, event.Timestamp)
	}

	require.NoError(t, b.Unsubscribe(ctx, "first"))
	_, ok := <-first
	assert.False(t, ok, "unsubscribe closes the channel")
	require.NoError(t, b.Unsubscribe(ctx, "first"))

	require.NoError(t, b.Publish(ctx, outbound.Event{Type: outbound.EventTypeLotClosed, LotID: 1}))
	assert.Equal(t, outbound.EventTypeLotClosed, receive(t, second).Type)
}

func TestLocalBroadcasterDropsWhenFull(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := NewLocalBroadcaster(LocalBroadcasterParams{Logger: zerolog.Nop()})

	slow := make(chan outbound.Event, 1)
	require.NoError(t, b.Subscribe(ctx, "slow", slow))

	require.NoError(t, b.Publish(ctx, outbound.Event{Type: outbound.EventTypeBidPlaced, LotID: 1}))
	require.NoError(t, b.Publish(ctx, outbound.Event{Type: outbound.EventTypeBidPlaced, LotID: 2}))

	assert.Equal(t, 1, receive(t, slow).LotID)
	assert.Len(t, slow, 0)
}

func TestLocalBroadcasterClose(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := NewLocalBroadcaster(LocalBroadcasterParams{Logger: zerolog.Nop()})

	ch := make(chan outbound.Event, 1)
	require.NoError(t, b.Subscribe(ctx, "a", ch))
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, ok := <-ch
	assert.False(t, ok)
	assert.ErrorIs(t, b.Publish(ctx, outbound.Event{Type: outbound.EventTypeLotCreated}), ErrBroadcasterClosed)
	assert.ErrorIs(t, b.Subscribe(ctx, "b", make(chan outbound.Event)), ErrBroadcasterClosed)
}

func TestRedisBroadcasterRoundTrip(t *testing.T) {
	addr := os.Getenv("AUCTION_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AUCTION_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	client := redisadapter.NewClient(config.RedisConfig{Addr: addr})
	require.NoError(t, redisadapter.PingRedis(ctx, client))

	b := NewBroadcaster(RedisBroadcasterParams{
		RedisClient: client,
		Channel:     "auction:test:" + uuid.NewString(),
		Logger:      zerolog.Nop(),
	})
	t.Cleanup(func() { _ = b.Close() })

	events := make(chan outbound.Event, 4)
	require.NoError(t, b.Subscribe(ctx, "sub", events))

	require.NoError(t, b.Publish(ctx, outbound.Event{
		Type:  outbound.EventTypeLotWithdrawn,
		LotID: 7,
		Data:  map[string]interface{}{"lot_id": 7},
	}))

	event := receive(t, events)
	assert.Equal(t, outbound.EventTypeLotWithdrawn, event.Type)
	assert.Equal(t, 7, event.LotID)
	assert.EqualValues(t, 7, event.Data["lot_id"])

	require.NoError(t, b.Unsubscribe(ctx, "sub"))
	_, ok := <-events
	assert.False(t, ok)
}
