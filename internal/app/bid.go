package app

import (
	"context"
	"fmt"
	"strings"

	"cattle-auction-service/internal/domain/lot"
	"cattle-auction-service/internal/domain/shared"
	"cattle-auction-service/internal/ports/inbound"
	"cattle-auction-service/internal/ports/outbound"
)

// PlaceBid validates and applies a bid as one atomic step: parse, look up,
// check the lot is open, require a strictly higher amount, update, persist.
func (h *AuctionHandler) PlaceBid(ctx context.Context, req inbound.PlaceBidRequest) (lot.Lot, error) {
	h.logger.Debug().
		Str("lot_id", req.LotID).
		Str("bidder", req.Bidder).
		Str("amount", req.Amount).
		Msg("Attempting to place bid")

	var (
		updated lot.Lot
		seq     uint64
		err     error
	)
	stats := h.withGuard(func() {
		updated, err = h.placeBidLocked(ctx, req)
		if err == nil {
			seq = h.nextSequenceLocked()
		}
	})
	h.observe("place_bid", err, stats)

	if err != nil {
		h.logger.Warn().Err(err).
			Str("lot_id", req.LotID).
			Str("bidder", req.Bidder).
			Str("amount", req.Amount).
			Msg("Bid rejected")
		return lot.Lot{}, err
	}

	h.logger.Info().
		Int("lot_id", updated.ID).
		Str("bidder", updated.CurrentBidder).
		Str("amount", updated.CurrentBidAmount.StringFixed(2)).
		Msg("Bid placed successfully")

	h.publish(ctx, outbound.Event{
		Type:     outbound.EventTypeBidPlaced,
		Sequence: seq,
		LotID:    updated.ID,
		Data:     map[string]interface{}{"lot": updated},
	})

	return updated, nil
}

func (h *AuctionHandler) placeBidLocked(ctx context.Context, req inbound.PlaceBidRequest) (lot.Lot, error) {
	id, err := lot.ParseID(req.LotID)
	if err != nil {
		return lot.Lot{}, err
	}
	amount, err := lot.ParseAmount(req.Amount)
	if err != nil {
		return lot.Lot{}, err
	}
	if strings.TrimSpace(req.Bidder) == "" {
		return lot.Lot{}, fmt.Errorf("%w: bidder name is required", shared.ErrInvalidInput)
	}
	if req.Bidder == lot.NoBidder {
		return lot.Lot{}, fmt.Errorf("%w: bidder name %q is reserved", shared.ErrInvalidInput, req.Bidder)
	}

	target, err := h.lots.Find(id)
	if err != nil {
		return lot.Lot{}, err
	}
	if err := target.PlaceBid(amount, req.Bidder); err != nil {
		return lot.Lot{}, err
	}

	h.persistLocked(ctx, "place_bid")
	return *target, nil
}
