// internal/ledger/ledger.go

// Package ledger defines the contract every ledger backend satisfies and the
// in-memory snapshot reconciliation runs against.
package ledger

import (
	"context"

	"dinero/internal/domain"
)

// Store is a persisted ledger backend. Implementations: PostgreSQL (the
// source of truth, unscoped) and NocoDB (one table per calendar year).
type Store interface {
	// LoadSnapshot reads every committed record into memory. Called once
	// per run; the snapshot is read-only for the run's duration.
	LoadSnapshot(ctx context.Context) (*Snapshot, error)
	// Commit persists the batch atomically: all records or none. It must
	// only be called with the New partition of a reconciliation; passing
	// existing records would double-insert.
	Commit(ctx context.Context, records []*domain.Transaction) (int, error)
	// Scope returns the calendar year this store is constrained to, if any.
	// Unscoped stores return ok=false.
	Scope() (year int, ok bool)
}
