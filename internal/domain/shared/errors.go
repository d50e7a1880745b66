package shared

import "errors"

// Domain-specific errors
var (
	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Lot errors
	ErrLotNotFound   = errors.New("lot not found")
	ErrAuctionClosed = errors.New("auction for lot is closed")
	ErrBidTooLow     = errors.New("bid amount must be higher than current bid")
	ErrHasBids       = errors.New("lot with bids cannot be withdrawn")

	// Participant errors
	ErrNameTaken = errors.New("participant name already in use")

	// Persistence errors
	ErrCorruptData = errors.New("snapshot data is corrupt")

	// WebSocket session errors
	ErrNotConnected     = errors.New("participant is not connected")
	ErrAlreadyConnected = errors.New("session already connected")

	// WebSocket message validation errors
	ErrMessageTypeRequired = errors.New("message type is required")
	ErrUnknownMessageType  = errors.New("unknown message type")
)
