package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"cattle-auction-service/internal/app"
	"cattle-auction-service/internal/domain/lot"
	"cattle-auction-service/internal/ports/inbound"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(input string) (*Console, *app.AuctionHandler, *bytes.Buffer) {
	handler := app.NewAuctionHandler(app.AuctionHandlerParams{Logger: zerolog.Nop()})
	out := &bytes.Buffer{}
	c := NewConsole(ConsoleParams{
		Service: handler,
		In:      strings.NewReader(input),
		Out:     out,
		Logger:  zerolog.Nop(),
	})
	return c, handler, out
}

func TestConsoleSession(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"create Red Angus 50 1500",
		"create Nelore 10 500",
		"withdraw 2",
		"withdraw 2",
		"close 1",
		"list",
		"bogus",
		"",
	}, "\n")
	c, handler, out := newTestConsole(input)

	require.NoError(t, c.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Lot #1 created.")
	assert.Contains(t, text, "Lot #2 created.")
	assert.Contains(t, text, "Lot #2 withdrawn.")
	assert.Contains(t, text, "error: lot not found: #2 (NotFound)")
	assert.Contains(t, text, "Lot #1 closed. Winner: none")
	assert.Contains(t, text, "Red Angus")
	assert.Contains(t, text, "1,500.00")
	assert.Contains(t, text, "CLOSED")
	assert.Contains(t, text, `unknown command "bogus"`)

	lots := handler.ListLots(context.Background())
	require.Len(t, lots, 1)
	assert.Equal(t, "Red Angus", lots[0].Breed)
	assert.Equal(t, 50, lots[0].Quantity)
}

func TestConsoleWithdrawRejectsLotWithBids(t *testing.T) {
	t.Parallel()

	c, handler, out := newTestConsole("")
	ctx := context.Background()

	_, err := handler.CreateLot(ctx, inbound.CreateLotRequest{Breed: "Gir", Quantity: "3", Price: "100"})
	require.NoError(t, err)
	_, err = handler.PlaceBid(ctx, inbound.PlaceBidRequest{LotID: "1", Amount: "150", Bidder: "Dan"})
	require.NoError(t, err)

	err = c.Execute(ctx, "withdraw 1")
	require.Error(t, err)
	assert.Contains(t, describe(err), "HasBids")

	require.NoError(t, c.Execute(ctx, "close 1"))
	assert.Contains(t, out.String(), "Lot #1 closed. Winner: Dan")
}

func TestConsoleUsageErrors(t *testing.T) {
	t.Parallel()

	c, _, _ := newTestConsole("")
	ctx := context.Background()

	for _, line := range []string{"create Angus 5", "withdraw", "close 1 2", "create Angus five 10"} {
		err := c.Execute(ctx, line)
		assert.Error(t, err, line)
	}
	assert.NoError(t, c.Execute(ctx, "   "))
}

func TestConsoleQuit(t *testing.T) {
	t.Parallel()

	c, _, out := newTestConsole("help\nquit\ncreate Angus 1 1\n")
	err := c.Run(context.Background())
	require.ErrorIs(t, err, ErrQuitRequested)
	assert.Contains(t, out.String(), "Commands:")
	assert.NotContains(t, out.String(), "created")
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"0":                  "0.00",
		"1600":               "1,600.00",
		"1250.5":             "1,250.50",
		"1234567.89":         "1,234,567.89",
		"0.05":               "0.05",
		"999999999999999.99": "999,999,999,999,999.99",
		"123456789012345.67": "123,456,789,012,345.67",
	}
	for raw, want := range tests {
		l := lot.Lot{CurrentBidAmount: decimal.RequireFromString(raw)}
		assert.Equal(t, want, FormatAmount(l), raw)
	}
}
