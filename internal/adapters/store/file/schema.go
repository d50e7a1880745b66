package file

import (
	"fmt"

	"cattle-auction-service/internal/domain/lot"

	"github.com/shopspring/decimal"
)

const currentSchemaVersion = 1

// tomlSchema is the TOML document layout. JSON snapshots are a bare array of
// lotSchema records.
type tomlSchema struct {
	Version int         `toml:"version"`
	Lots    []lotSchema `toml:"lots"`
}

func (s *tomlSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s tomlSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported snapshot schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type lotSchema struct {
	ID               int             `json:"id" toml:"id"`
	Breed            string          `json:"breed" toml:"breed"`
	Quantity         int             `json:"quantity" toml:"quantity"`
	CurrentBidAmount decimal.Decimal `json:"currentBidAmount" toml:"currentBidAmount"`
	CurrentBidder    string          `json:"currentBidder" toml:"currentBidder"`
	Status           string          `json:"status" toml:"status"`
}

func toSchema(l lot.Lot) lotSchema {
	return lotSchema{
		ID:               l.ID,
		Breed:            l.Breed,
		Quantity:         l.Quantity,
		CurrentBidAmount: l.CurrentBidAmount,
		CurrentBidder:    l.CurrentBidder,
		Status:           string(l.Status),
	}
}

func fromSchema(s lotSchema) (lot.Lot, error) {
	l := lot.Lot{
		ID:               s.ID,
		Breed:            s.Breed,
		Quantity:         s.Quantity,
		CurrentBidAmount: s.CurrentBidAmount,
		CurrentBidder:    s.CurrentBidder,
		Status:           lot.Status(s.Status),
	}
	if err := l.Validate(); err != nil {
		return lot.Lot{}, err
	}
	return l, nil
}
