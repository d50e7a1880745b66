package lot

import (
	"testing"

	"cattle-auction-service/internal/domain/shared"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateAssignsIncreasingIDs(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	first, err := r.Create("  Angus ", "50", "1500")
	require.NoError(t, err)
	second, err := r.Create("Nelore", "10", "0")
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "Angus", first.Breed)
	assert.Equal(t, StatusOpen, first.Status)
	assert.Equal(t, NoBidder, first.CurrentBidder)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 2, r.LastID())

	_, err = r.Create(" ", "1", "1")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Equal(t, 2, r.LastID(), "failed creates do not consume ids")
}

func TestRegistryListReturnsCopies(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.Create("Angus", "5", "10")
	require.NoError(t, err)

	lots := r.List()
	lots[0].Status = StatusClosed
	lots[0].CurrentBidder = "Mallory"

	live, err := r.Find(1)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, live.Status)
	assert.Equal(t, NoBidder, live.CurrentBidder)
}

func TestRegistryRemove(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	_, err := r.Create("Angus", "5", "10")
	require.NoError(t, err)
	_, err = r.Create("Gir", "5", "10")
	require.NoError(t, err)

	live, err := r.Find(2)
	require.NoError(t, err)
	require.NoError(t, live.PlaceBid(decimal.NewFromInt(11), "Ann"))

	require.ErrorIs(t, r.Remove(2), shared.ErrHasBids)
	require.NoError(t, r.Remove(1))
	require.ErrorIs(t, r.Remove(1), shared.ErrLotNotFound)

	_, err = r.Find(1)
	assert.ErrorIs(t, err, shared.ErrLotNotFound)

	created, err := r.Create("Brahman", "1", "1")
	require.NoError(t, err)
	assert.Equal(t, 3, created.ID)
}

func TestRegistryRestore(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	require.NoError(t, r.Restore([]Lot{
		{ID: 7, Breed: "Gir", Quantity: 1, CurrentBidAmount: decimal.NewFromInt(5), CurrentBidder: NoBidder, Status: StatusOpen},
		{ID: 3, Breed: "Angus", Quantity: 2, CurrentBidAmount: decimal.NewFromInt(9), CurrentBidder: "Ann", Status: StatusClosed},
	}))

	lots := r.List()
	require.Len(t, lots, 2)
	assert.Equal(t, 3, lots[0].ID)
	assert.Equal(t, 7, lots[1].ID)
	assert.Equal(t, 7, r.LastID())

	require.NoError(t, r.Restore(nil))
	assert.Zero(t, r.Len())
	assert.Zero(t, r.LastID())

	err := r.Restore([]Lot{
		{ID: 1, Breed: "Gir", Quantity: 1, CurrentBidAmount: decimal.Zero, CurrentBidder: NoBidder, Status: StatusOpen},
		{ID: 1, Breed: "Gir", Quantity: 1, CurrentBidAmount: decimal.Zero, CurrentBidder: NoBidder, Status: StatusOpen},
	})
	assert.ErrorIs(t, err, shared.ErrCorruptData)

	err = r.Restore([]Lot{{ID: 1, Breed: "Gir", Quantity: 1, CurrentBidder: NoBidder, Status: "PENDING"}})
	assert.ErrorIs(t, err, shared.ErrCorruptData)
}
