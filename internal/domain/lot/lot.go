package lot

import (
	"fmt"

	"cattle-auction-service/internal/domain/shared"

	"github.com/shopspring/decimal"
)

// Status represents the current status of a lot
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// NoBidder marks a lot that has not received any accepted bid. It is
// reserved and cannot be used as a participant name.
const NoBidder = "none"

// Amount bounds. Larger or finer values are rejected before they reach a lot.
const (
	MaxAmountScale         = 2
	MaxAmountIntegerDigits = 15
)

// Lot represents one batch of livestock put up for auction
type Lot struct {
	ID               int             `json:"id"`
	Breed            string          `json:"breed"`
	Quantity         int             `json:"quantity"`
	CurrentBidAmount decimal.Decimal `json:"currentBidAmount"`
	CurrentBidder    string          `json:"currentBidder"`
	Status           Status          `json:"status"`
}

// IsOpen returns true if the lot accepts bids
func (l *Lot) IsOpen() bool {
	return l.Status == StatusOpen
}

// IsClosed returns true if the lot auction has been closed
func (l *Lot) IsClosed() bool {
	return l.Status == StatusClosed
}

// HasBids returns true once any bid has been accepted
func (l *Lot) HasBids() bool {
	return l.CurrentBidder != NoBidder
}

// PlaceBid raises the current bid. The amount must be strictly greater than
// the current one; ties are rejected.
func (l *Lot) PlaceBid(amount decimal.Decimal, bidder string) error {
	if !l.IsOpen() {
		return shared.ErrAuctionClosed
	}
	if amount.LessThanOrEqual(l.CurrentBidAmount) {
		return fmt.Errorf("%w: current bid is %s", shared.ErrBidTooLow, l.CurrentBidAmount.StringFixed(2))
	}

	l.CurrentBidAmount = amount
	l.CurrentBidder = bidder
	return nil
}

// Close marks the lot as closed and returns the winner, which is NoBidder
// when nobody bid. Closing an already closed lot changes nothing.
func (l *Lot) Close() string {
	l.Status = StatusClosed
	return l.CurrentBidder
}

// Validate checks a lot record restored from a snapshot
func (l *Lot) Validate() error {
	if l.ID <= 0 {
		return fmt.Errorf("lot id %d must be positive", l.ID)
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("lot %d: quantity %d must be positive", l.ID, l.Quantity)
	}
	if l.CurrentBidAmount.IsNegative() {
		return fmt.Errorf("lot %d: negative bid amount %s", l.ID, l.CurrentBidAmount)
	}
	if err := CheckAmountBounds(l.CurrentBidAmount); err != nil {
		return fmt.Errorf("lot %d: %v", l.ID, err)
	}
	if l.CurrentBidder == "" {
		return fmt.Errorf("lot %d: empty bidder", l.ID)
	}
	if l.Status != StatusOpen && l.Status != StatusClosed {
		return fmt.Errorf("lot %d: unknown status %q", l.ID, l.Status)
	}
	return nil
}

// CheckAmountBounds rejects amounts with more than MaxAmountScale decimal
// places or more than MaxAmountIntegerDigits integer digits. It inspects the
// coefficient and exponent only, so huge exponents are never expanded.
func CheckAmountBounds(amount decimal.Decimal) error {
	exponent := int(amount.Exponent())
	if exponent < -MaxAmountScale {
		return fmt.Errorf("amount has more than %d decimal places", MaxAmountScale)
	}
	if amount.IsZero() {
		return nil
	}
	if amount.NumDigits()+exponent > MaxAmountIntegerDigits {
		return fmt.Errorf("amount exceeds %d integer digits", MaxAmountIntegerDigits)
	}
	return nil
}
