package inbound

import (
	"context"

	"cattle-auction-service/internal/domain/lot"
)

// AuctionService defines the interface for auction operations
type AuctionService interface {
	// Connect registers a participant name
	Connect(ctx context.Context, name string) error

	// Disconnect releases a participant name; it never fails
	Disconnect(ctx context.Context, name string)

	// CreateLot opens a new lot at its starting price
	CreateLot(ctx context.Context, req CreateLotRequest) (lot.Lot, error)

	// ListLots returns a consistent copy of every lot
	ListLots(ctx context.Context) []lot.Lot

	// PlaceBid raises the current bid on a lot
	PlaceBid(ctx context.Context, req PlaceBidRequest) (lot.Lot, error)

	// CloseLot closes bidding on a lot and reports the winner
	CloseLot(ctx context.Context, lotID string) (CloseResult, error)

	// WithdrawLot removes a lot that never received a bid
	WithdrawLot(ctx context.Context, lotID string) error

	// Stats returns registry counters
	Stats(ctx context.Context) Stats
}

// request to create a lot; values arrive as typed by the administrator
type CreateLotRequest struct {
	Breed    string `json:"breed"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

// request to place a bid; lot id and amount are parsed by the handler
type PlaceBidRequest struct {
	LotID  string `json:"lot_id"`
	Amount string `json:"amount"`
	Bidder string `json:"bidder"`
}

// CloseResult is the outcome of closing a lot
type CloseResult struct {
	Lot    lot.Lot `json:"lot"`
	Winner string  `json:"winner"`
}

// Stats summarises the handler state
type Stats struct {
	Lots         int `json:"lots"`
	OpenLots     int `json:"open_lots"`
	Participants int `json:"participants"`
}
