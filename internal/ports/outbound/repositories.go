package outbound

import (
	"context"

	"cattle-auction-service/internal/domain/lot"
)

// SnapshotStore defines the interface for durable lot snapshots
type SnapshotStore interface {
	// Save replaces the stored snapshot with lots
	Save(ctx context.Context, lots []lot.Lot) error

	// Load returns the stored lots, or an empty slice when nothing was saved yet
	Load(ctx context.Context) ([]lot.Lot, error)
}
