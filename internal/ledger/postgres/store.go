// internal/ledger/postgres/store.go

// Package postgres implements the ledger.Store contract on PostgreSQL.
// This backend is the source of truth and carries no year scope.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"dinero/internal/domain"
	"dinero/internal/ledger"
	"dinero/pkg/db"
)

// DBExecutor defines the common database operations needed by the store.
// Both *sqlx.DB and *sqlx.Tx implement these methods, so the same query code
// runs inside and outside a transaction.
type DBExecutor interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store implements ledger.Store for PostgreSQL.
type Store struct {
	dbBeginner db.DBTxBeginner // For starting transactions (e.g., *sqlx.DB)
	dbExecutor DBExecutor      // For non-transactional reads (e.g., *sqlx.DB)
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
	logger     *slog.Logger
}

// NewStore creates a PostgreSQL-backed ledger store. The transaction helper
// functions are injected so tests can run without a live database.
func NewStore(
	dbBeginner db.DBTxBeginner,
	dbExecutor DBExecutor,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	logger *slog.Logger,
) *Store {
	return &Store{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
		logger:     logger,
	}
}

// LoadSnapshot reads the full transactions table into memory.
func (s *Store) LoadSnapshot(ctx context.Context) (*ledger.Snapshot, error) {
	records := []domain.Transaction{}
	query := `
		SELECT id, date, description, category, subcategory, amount, notes, account
		FROM transactions
		ORDER BY id`
	if err := s.dbExecutor.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("load snapshot: failed to select transactions: %w", err)
	}
	s.logger.Info("Loaded ledger snapshot", "records", len(records))
	return ledger.NewSnapshot(records), nil
}

// Commit inserts the batch inside a single database transaction. Either
// every record persists or none do; IDs are filled in on success.
func (s *Store) Commit(ctx context.Context, records []*domain.Transaction) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return 0, fmt.Errorf("commit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(DBExecutor)
	if !ok {
		return 0, fmt.Errorf("commit: transaction controller does not implement DBExecutor")
	}

	query := `INSERT INTO transactions (date, description, category, subcategory, amount, notes, account)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	for _, record := range records {
		err := txExecutor.QueryRowContext(ctx, query,
			record.Date,
			record.Description,
			record.Category,
			record.Subcategory,
			record.Amount,
			record.Notes,
			record.Account,
		).Scan(&record.ID)
		if err != nil {
			return 0, fmt.Errorf("commit: failed to insert transaction %q: %w", record.Description, err)
		}
	}

	if err := s.commitTx(txController); err != nil {
		return 0, fmt.Errorf("commit: failed to commit transaction: %w", err)
	}

	s.logger.Info("Committed new transactions", "records", len(records))
	return len(records), nil
}

// Scope reports no scope: the relational ledger accepts records of any year.
func (s *Store) Scope() (int, bool) {
	return 0, false
}

// InitSchema creates the transactions table if it does not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS transactions (
			id          BIGSERIAL PRIMARY KEY,
			date        TIMESTAMPTZ,
			description VARCHAR(1000),
			category    VARCHAR(50),
			subcategory VARCHAR(50),
			amount      NUMERIC(20, 4),
			notes       VARCHAR(1000),
			account     VARCHAR(50)
		)`
	if _, err := s.dbExecutor.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("init schema: failed to create transactions table: %w", err)
	}
	s.logger.Info("Transactions table ready")
	return nil
}
