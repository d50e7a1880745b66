package lot

import (
	"strings"
	"testing"

	"cattle-auction-service/internal/domain/shared"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLot(amount string) *Lot {
	return &Lot{
		ID:               1,
		Breed:            "Angus",
		Quantity:         10,
		CurrentBidAmount: decimal.RequireFromString(amount),
		CurrentBidder:    NoBidder,
		Status:           StatusOpen,
	}
}

func TestPlaceBidRequiresStrictlyHigherAmount(t *testing.T) {
	t.Parallel()

	l := openLot("1500")

	err := l.PlaceBid(decimal.RequireFromString("1500"), "Ann")
	require.ErrorIs(t, err, shared.ErrBidTooLow)
	assert.Contains(t, err.Error(), "1500.00")
	assert.False(t, l.HasBids())

	require.NoError(t, l.PlaceBid(decimal.RequireFromString("1500.01"), "Ann"))
	assert.True(t, l.HasBids())
	assert.Equal(t, "Ann", l.CurrentBidder)

	require.ErrorIs(t, l.PlaceBid(decimal.RequireFromString("1400"), "Ben"), shared.ErrBidTooLow)
	assert.Equal(t, "Ann", l.CurrentBidder)
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	l := openLot("10")
	require.NoError(t, l.PlaceBid(decimal.NewFromInt(20), "Ann"))

	assert.Equal(t, "Ann", l.Close())
	assert.True(t, l.IsClosed())
	assert.Equal(t, "Ann", l.Close())
	assert.False(t, l.IsOpen())

	require.ErrorIs(t, l.PlaceBid(decimal.NewFromInt(30), "Ben"), shared.ErrAuctionClosed)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, openLot("0").Validate())

	tests := map[string]func(*Lot){
		"zero id":         func(l *Lot) { l.ID = 0 },
		"zero quantity":   func(l *Lot) { l.Quantity = 0 },
		"negative amount": func(l *Lot) { l.CurrentBidAmount = decimal.NewFromInt(-1) },
		"empty bidder":    func(l *Lot) { l.CurrentBidder = "" },
		"unknown status":  func(l *Lot) { l.Status = "SOLD" },
		"huge exponent":   func(l *Lot) { l.CurrentBidAmount = decimal.New(1, 50000000) },
		"sub cent amount": func(l *Lot) { l.CurrentBidAmount = decimal.RequireFromString("0.001") },
	}
	for name, mutate := range tests {
		l := openLot("1")
		mutate(l)
		assert.Error(t, l.Validate(), name)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	_, err = ParseID("4.2")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	amount, err := ParseAmount("1500.50")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1500.5").Equal(amount))

	_, err = ParseAmount("1,500")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	amount, err = ParseAmount("1e3")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1000).Equal(amount))

	amount, err = ParseAmount("999999999999999.99")
	require.NoError(t, err)
	assert.Equal(t, "999999999999999.99", amount.StringFixed(2))

	for _, raw := range []string{
		"1e50000000",
		"1E16",
		"1000000000000000",
		"1e-50000000",
		"12.345",
		"1" + strings.Repeat("0", 40),
	} {
		_, err = ParseAmount(raw)
		assert.ErrorIs(t, err, shared.ErrInvalidInput, raw)
	}

	_, err = ParseQuantity("-3")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = ParseStartPrice("-0.01")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = ParseStartPrice("5e20")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	price, err := ParseStartPrice("0")
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}
