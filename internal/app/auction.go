package app

import (
	"context"
	"sync"
	"time"

	"cattle-auction-service/internal/domain/lot"
	"cattle-auction-service/internal/domain/participant"
	"cattle-auction-service/internal/domain/shared"
	"cattle-auction-service/internal/ports/inbound"
	"cattle-auction-service/internal/ports/outbound"

	"github.com/rs/zerolog"
)

// AuctionHandler owns the lot and participant registries. Every operation
// runs entirely under one mutex, including the snapshot write that follows a
// mutation, so calls are linearizable. Events are published after the mutex
// is released.
type AuctionHandler struct {
	mu           sync.Mutex
	lots         *lot.Registry
	participants *participant.Registry
	sequence     uint64
	store        outbound.SnapshotStore
	broadcaster  outbound.Broadcaster
	recorder     outbound.Recorder
	logger       zerolog.Logger
}

type AuctionHandlerParams struct {
	Store       outbound.SnapshotStore
	Broadcaster outbound.Broadcaster
	Recorder    outbound.Recorder
	Logger      zerolog.Logger
}

var _ inbound.AuctionService = (*AuctionHandler)(nil)

// NewAuctionHandler creates a handler with empty registries. Call Load to
// restore the persisted snapshot.
func NewAuctionHandler(params AuctionHandlerParams) *AuctionHandler {
	recorder := params.Recorder
	if recorder == nil {
		recorder = outbound.NopRecorder{}
	}

	return &AuctionHandler{
		lots:         lot.NewRegistry(),
		participants: participant.NewRegistry(),
		store:        params.Store,
		broadcaster:  params.Broadcaster,
		recorder:     recorder,
		logger:       params.Logger.With().Str("component", "auction_handler").Logger(),
	}
}

// Load restores lots from the snapshot store. On failure the registry stays
// empty and the error is returned for the caller to report.
func (h *AuctionHandler) Load(ctx context.Context) error {
	if h.store == nil {
		return nil
	}

	var err error
	stats := h.withGuard(func() {
		var lots []lot.Lot
		lots, err = h.store.Load(ctx)
		if err != nil {
			return
		}
		err = h.lots.Restore(lots)
	})
	h.recorder.SetState(stats.Lots, stats.OpenLots, stats.Participants)

	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load auction snapshot, starting with an empty auction")
		return err
	}

	h.logger.Info().
		Int("lots", stats.Lots).
		Int("open_lots", stats.OpenLots).
		Msg("Auction snapshot loaded")
	return nil
}

// Connect registers a participant name
func (h *AuctionHandler) Connect(ctx context.Context, name string) error {
	var err error
	stats := h.withGuard(func() {
		err = h.participants.Register(name)
	})
	h.observe("connect", err, stats)

	if err != nil {
		h.logger.Warn().Err(err).Str("participant", name).Msg("Connection refused")
		return err
	}

	h.logger.Info().Str("participant", name).Int("participants", stats.Participants).Msg("Participant connected")
	return nil
}

// Disconnect releases a participant name
func (h *AuctionHandler) Disconnect(ctx context.Context, name string) {
	stats := h.withGuard(func() {
		h.participants.Unregister(name)
	})
	h.observe("disconnect", nil, stats)

	h.logger.Info().Str("participant", name).Int("participants", stats.Participants).Msg("Participant disconnected")
}

// CreateLot opens a new lot and persists the snapshot
func (h *AuctionHandler) CreateLot(ctx context.Context, req inbound.CreateLotRequest) (lot.Lot, error) {
	var (
		created lot.Lot
		seq     uint64
		err     error
	)
	stats := h.withGuard(func() {
		created, err = h.lots.Create(req.Breed, req.Quantity, req.Price)
		if err != nil {
			return
		}
		h.persistLocked(ctx, "create_lot")
		seq = h.nextSequenceLocked()
	})
	h.observe("create_lot", err, stats)

	if err != nil {
		h.logger.Warn().Err(err).
			Str("breed", req.Breed).
			Str("quantity", req.Quantity).
			Str("price", req.Price).
			Msg("Lot creation rejected")
		return lot.Lot{}, err
	}

	h.logger.Info().
		Int("lot_id", created.ID).
		Str("breed", created.Breed).
		Int("quantity", created.Quantity).
		Str("start_price", created.CurrentBidAmount.StringFixed(2)).
		Msg("Lot created")

	h.publish(ctx, outbound.Event{
		Type:     outbound.EventTypeLotCreated,
		Sequence: seq,
		LotID:    created.ID,
		Data:     map[string]interface{}{"lot": created},
	})

	return created, nil
}

// ListLots returns copies of every lot
func (h *AuctionHandler) ListLots(ctx context.Context) []lot.Lot {
	var lots []lot.Lot
	stats := h.withGuard(func() {
		lots = h.lots.List()
	})
	h.observe("list_lots", nil, stats)

	h.logger.Debug().Int("count", len(lots)).Msg("Lots listed")
	return lots
}

// CloseLot closes bidding on a lot. Closing an already closed lot reports
// the same winner and does not rewrite the snapshot.
func (h *AuctionHandler) CloseLot(ctx context.Context, lotID string) (inbound.CloseResult, error) {
	var (
		result inbound.CloseResult
		closed bool
		seq    uint64
		err    error
	)
	stats := h.withGuard(func() {
		var id int
		id, err = lot.ParseID(lotID)
		if err != nil {
			return
		}
		var target *lot.Lot
		target, err = h.lots.Find(id)
		if err != nil {
			return
		}

		closed = target.IsOpen()
		result.Winner = target.Close()
		result.Lot = *target
		if closed {
			h.persistLocked(ctx, "close_lot")
			seq = h.nextSequenceLocked()
		}
	})
	h.observe("close_lot", err, stats)

	if err != nil {
		h.logger.Warn().Err(err).Str("lot_id", lotID).Msg("Lot close rejected")
		return inbound.CloseResult{}, err
	}

	if !closed {
		h.logger.Info().Int("lot_id", result.Lot.ID).Str("winner", result.Winner).Msg("Lot already closed")
		return result, nil
	}

	h.logger.Info().
		Int("lot_id", result.Lot.ID).
		Str("winner", result.Winner).
		Str("final_amount", result.Lot.CurrentBidAmount.StringFixed(2)).
		Msg("Lot closed")

	h.publish(ctx, outbound.Event{
		Type:     outbound.EventTypeLotClosed,
		Sequence: seq,
		LotID:    result.Lot.ID,
		Data:     map[string]interface{}{"lot": result.Lot, "winner": result.Winner},
	})

	return result, nil
}

// WithdrawLot removes a lot that never received a bid
func (h *AuctionHandler) WithdrawLot(ctx context.Context, lotID string) error {
	var (
		id  int
		seq uint64
		err error
	)
	stats := h.withGuard(func() {
		id, err = lot.ParseID(lotID)
		if err != nil {
			return
		}
		if err = h.lots.Remove(id); err != nil {
			return
		}
		h.persistLocked(ctx, "withdraw_lot")
		seq = h.nextSequenceLocked()
	})
	h.observe("withdraw_lot", err, stats)

	if err != nil {
		h.logger.Warn().Err(err).Str("lot_id", lotID).Msg("Lot withdrawal rejected")
		return err
	}

	h.logger.Info().Int("lot_id", id).Msg("Lot withdrawn")

	h.publish(ctx, outbound.Event{
		Type:     outbound.EventTypeLotWithdrawn,
		Sequence: seq,
		LotID:    id,
		Data:     map[string]interface{}{"lot_id": id},
	})

	return nil
}

// Stats returns registry counters
func (h *AuctionHandler) Stats(ctx context.Context) inbound.Stats {
	return h.withGuard(func() {})
}

// Flush writes the current snapshot and reports the result. It is used on
// shutdown where the caller wants to know whether the final write landed.
func (h *AuctionHandler) Flush(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store == nil {
		return nil
	}
	start := time.Now()
	err := h.store.Save(ctx, h.lots.List())
	h.recorder.ObservePersist(time.Since(start), err)
	return err
}

// withGuard runs fn while holding the handler mutex and returns the
// registry counters observed before the mutex is released
func (h *AuctionHandler) withGuard(fn func()) inbound.Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	fn()
	return h.statsLocked()
}

// nextSequenceLocked numbers an accepted mutation. Publishing happens after
// the guard is released, so events can reach subscribers out of order; the
// sequence lets them restore acceptance order.
func (h *AuctionHandler) nextSequenceLocked() uint64 {
	h.sequence++
	return h.sequence
}

func (h *AuctionHandler) statsLocked() inbound.Stats {
	stats := inbound.Stats{
		Lots:         h.lots.Len(),
		Participants: h.participants.Len(),
	}
	for _, l := range h.lots.List() {
		if l.IsOpen() {
			stats.OpenLots++
		}
	}
	return stats
}

// persistLocked writes the full snapshot. A failed write is logged and the
// in-memory mutation stands.
func (h *AuctionHandler) persistLocked(ctx context.Context, operation string) {
	if h.store == nil {
		return
	}

	start := time.Now()
	err := h.store.Save(ctx, h.lots.List())
	elapsed := time.Since(start)
	h.recorder.ObservePersist(elapsed, err)

	if err != nil {
		h.logger.Error().Err(err).
			Str("operation", operation).
			Msg("Failed to persist auction snapshot, keeping in-memory state")
		return
	}

	h.logger.Debug().
		Str("operation", operation).
		Dur("elapsed", elapsed).
		Msg("Auction snapshot persisted")
}

func (h *AuctionHandler) observe(operation string, err error, stats inbound.Stats) {
	h.recorder.ObserveOperation(operation, shared.Outcome(err))
	h.recorder.SetState(stats.Lots, stats.OpenLots, stats.Participants)
}

func (h *AuctionHandler) publish(ctx context.Context, event outbound.Event) {
	if h.broadcaster == nil {
		return
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	if err := h.broadcaster.Publish(ctx, event); err != nil {
		// Log error but don't fail the operation
		h.logger.Error().Err(err).
			Str("event_type", string(event.Type)).
			Int("lot_id", event.LotID).
			Msg("Failed to broadcast lot event")
	}
}
