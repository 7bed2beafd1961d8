// pkg/db/transaction_manager.go
package db

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// TxController defines methods for controlling a database transaction.
// *sqlx.Tx implicitly implements this interface.
type TxController interface {
	Commit() error
	Rollback() error
}

// DBTxBeginner defines the interface for beginning transactions.
// *sqlx.DB implements this.
type DBTxBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// Function types for the transaction helpers, so callers can inject fakes
// in tests instead of a live database.
type (
	BeginTxFunc    func(ctx context.Context, dbConn DBTxBeginner) (TxController, error)
	CommitTxFunc   func(tx TxController) error
	RollbackTxFunc func(tx TxController)
)

// BeginTx starts a new database transaction.
// It returns a TxController interface, which *sqlx.Tx implements.
func BeginTx(ctx context.Context, dbConn DBTxBeginner) (TxController, error) {
	tx, err := dbConn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// CommitTx commits the transaction.
func CommitTx(tx TxController) error {
	return tx.Commit()
}

// RollbackTx rolls back the transaction. Safe to defer after a successful
// commit: sql.ErrTxDone is swallowed.
func RollbackTx(tx TxController) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		slog.Error("Failed to roll back transaction", "error", err)
	}
}
