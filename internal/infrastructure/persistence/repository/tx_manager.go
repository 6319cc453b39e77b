package repository

import (
	"context"
	"database/sql"

	"github.com/antonkh/budget-approval/internal/application/port"
	"github.com/antonkh/budget-approval/pkg/database"
)

type contextKey string

const txKey contextKey = "tx"

// TxManager implements port.TransactionManager over the sqlite connection.
// The open transaction travels in the context so repositories join it
// transparently through executorFrom.
type TxManager struct {
	db *database.DB
}

// NewTxManager creates a new transaction manager
func NewTxManager(db *database.DB) port.TransactionManager {
	return &TxManager{db: db}
}

// WithTransaction executes fn within a single transaction
func (m *TxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithTransaction(func(tx *sql.Tx) error {
		return fn(context.WithValue(ctx, txKey, tx))
	})
}

// executor interface covers both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// executorFrom returns the context transaction when present, the pool otherwise
func executorFrom(ctx context.Context, db *sql.DB) executor {
	if tx, ok := ctx.Value(txKey).(*sql.Tx); ok {
		return tx
	}
	return db
}

var _ port.TransactionManager = (*TxManager)(nil)
