package shared

import "errors"

// ErrorKind is the enumerated failure reported to remote callers
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindInvalidInput  ErrorKind = "InvalidInput"
	KindNotFound      ErrorKind = "NotFound"
	KindAuctionClosed ErrorKind = "AuctionClosed"
	KindBidTooLow     ErrorKind = "BidTooLow"
	KindNameTaken     ErrorKind = "NameTaken"
	KindHasBids       ErrorKind = "HasBids"
	KindCorruptData   ErrorKind = "CorruptData"
	KindNotConnected  ErrorKind = "NotConnected"
	KindInternal      ErrorKind = "Internal"
)

var kindsByError = []struct {
	err  error
	kind ErrorKind
}{
	{ErrInvalidInput, KindInvalidInput},
	{ErrLotNotFound, KindNotFound},
	{ErrAuctionClosed, KindAuctionClosed},
	{ErrBidTooLow, KindBidTooLow},
	{ErrNameTaken, KindNameTaken},
	{ErrHasBids, KindHasBids},
	{ErrCorruptData, KindCorruptData},
	{ErrNotConnected, KindNotConnected},
	{ErrAlreadyConnected, KindInvalidInput},
	{ErrMessageTypeRequired, KindInvalidInput},
	{ErrUnknownMessageType, KindInvalidInput},
}

// KindOf classifies err. A nil error has KindNone and anything unknown is
// KindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, candidate := range kindsByError {
		if errors.Is(err, candidate.err) {
			return candidate.kind
		}
	}
	return KindInternal
}

// Outcome is the metrics label for an operation result
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	return string(KindOf(err))
}
