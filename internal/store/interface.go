package store

import (
	"context"

	"tradepersona/internal/store/model"
)

// UnitOfWork defines a transaction scope.
type UnitOfWork interface {
	// Commit commits the transaction.
	Commit() error
	// Rollback rolls back the transaction.
	Rollback() error

	// Trades returns the trade repository within this transaction.
	Trades() TradeRepository
}

// Store is the entry point for database access.
type Store interface {
	// Begin starts a new UnitOfWork (transaction).
	Begin(ctx context.Context) (UnitOfWork, error)
	// Close closes the store connection.
	Close() error
}

// TradeRepository handles trade history persistence.
type TradeRepository interface {
	// Upsert inserts or replaces trades keyed by trade_id.
	Upsert(ctx context.Context, trades []model.TradeModel) error
	// ListAll returns every trade ordered by date, then trade_id.
	ListAll(ctx context.Context) ([]model.TradeModel, error)
	Count(ctx context.Context) (int64, error)
}
