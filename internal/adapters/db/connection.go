package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cattle-auction-service/internal/config"

	_ "github.com/lib/pq"
)

// Connection represents a database connection
type Connection struct {
	db *sql.DB
}

// NewConnection opens and pings the Postgres database named by the config
func NewConnection(ctx context.Context, cfg config.DatabaseConfig) (*Connection, error) {
	db, err := sql.Open("postgres", cfg.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Test the connection
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// The handler is the only writer
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	return &Connection{db: db}, nil
}

// GetDB returns the underlying sql.DB instance
func (client *Connection) GetDB() *sql.DB {
	return client.db
}

// Close closes the database connection
func (client *Connection) Close() error {
	return client.db.Close()
}

// BeginTransaction starts a new database transaction
func (client *Connection) BeginTransaction(ctx context.Context) (*sql.Tx, error) {
	tx, err := client.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// ExecuteTransaction executes a function within a transaction
func (client *Connection) ExecuteTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := client.BeginTransaction(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx failed: %v, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
