package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want ErrorKind
	}{
		{nil, KindNone},
		{fmt.Errorf("%w: quantity", ErrInvalidInput), KindInvalidInput},
		{fmt.Errorf("%w: #4", ErrLotNotFound), KindNotFound},
		{ErrAuctionClosed, KindAuctionClosed},
		{fmt.Errorf("place bid: %w", ErrBidTooLow), KindBidTooLow},
		{ErrNameTaken, KindNameTaken},
		{ErrHasBids, KindHasBids},
		{ErrCorruptData, KindCorruptData},
		{ErrNotConnected, KindNotConnected},
		{ErrUnknownMessageType, KindInvalidInput},
		{errors.New("disk on fire"), KindInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err), "%v", tt.err)
	}

	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "BidTooLow", Outcome(ErrBidTooLow))
}
