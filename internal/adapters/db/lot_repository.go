package db

import (
	"context"
	"database/sql"
	"fmt"

	"cattle-auction-service/internal/domain/lot"
	"cattle-auction-service/internal/domain/shared"
	"cattle-auction-service/internal/ports/outbound"

	"github.com/rs/zerolog"
)

const createLotsTable = `
	CREATE TABLE IF NOT EXISTS lots (
		id                 INTEGER PRIMARY KEY CHECK (id > 0),
		breed              TEXT    NOT NULL,
		quantity           INTEGER NOT NULL CHECK (quantity > 0),
		current_bid_amount NUMERIC NOT NULL CHECK (current_bid_amount >= 0),
		current_bidder     TEXT    NOT NULL,
		status             TEXT    NOT NULL CHECK (status IN ('OPEN', 'CLOSED'))
	)
`

// LotRepository stores the lot snapshot in the lots table. Every save
// replaces the table content inside one transaction.
type LotRepository struct {
	conn   *Connection
	logger zerolog.Logger
}

type LotRepositoryParams struct {
	Conn   *Connection
	Logger zerolog.Logger
}

var _ outbound.SnapshotStore = (*LotRepository)(nil)

// NewLotRepository creates a new lot repository
func NewLotRepository(params LotRepositoryParams) *LotRepository {
	return &LotRepository{
		conn:   params.Conn,
		logger: params.Logger.With().Str("component", "lot_repository").Logger(),
	}
}

// Migrate creates the lots table when it does not exist
func (r *LotRepository) Migrate(ctx context.Context) error {
	if _, err := r.conn.GetDB().ExecContext(ctx, createLotsTable); err != nil {
		return fmt.Errorf("failed to create lots table: %w", err)
	}
	return nil
}

// Save replaces every stored lot with lots
func (r *LotRepository) Save(ctx context.Context, lots []lot.Lot) error {
	err := r.conn.ExecuteTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM lots`); err != nil {
			return fmt.Errorf("failed to clear lots: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO lots (id, breed, quantity, current_bid_amount, current_bidder, status)
			VALUES ($1, $2, $3, $4, $5, $6)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare lot insert: %w", err)
		}
		defer stmt.Close()

		for _, l := range lots {
			if _, err := stmt.ExecContext(ctx,
				l.ID,
				l.Breed,
				l.Quantity,
				l.CurrentBidAmount,
				l.CurrentBidder,
				string(l.Status),
			); err != nil {
				return fmt.Errorf("failed to insert lot %d: %w", l.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug().Int("lots", len(lots)).Msg("Lots snapshot saved")
	return nil
}

// Load returns every stored lot ordered by id
func (r *LotRepository) Load(ctx context.Context) ([]lot.Lot, error) {
	query := `
		SELECT id, breed, quantity, current_bid_amount, current_bidder, status
		FROM lots
		ORDER BY id
	`

	rows, err := r.conn.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load lots: %w", err)
	}
	defer rows.Close()

	lots := []lot.Lot{}
	for rows.Next() {
		var (
			l      lot.Lot
			status string
		)
		if err := rows.Scan(
			&l.ID,
			&l.Breed,
			&l.Quantity,
			&l.CurrentBidAmount,
			&l.CurrentBidder,
			&status,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan lot: %v", shared.ErrCorruptData, err)
		}
		l.Status = lot.Status(status)
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrCorruptData, err)
		}
		lots = append(lots, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lots: %w", err)
	}

	return lots, nil
}
