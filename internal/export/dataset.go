// internal/export/dataset.go

// Package export writes derived snapshots of the ledger: a flat CSV mirror
// and a SQLite database. Both are regenerated from scratch on demand and are
// never read back as a source of truth.
package export

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"dinero/internal/domain"
	"dinero/internal/ledger"
)

var header = []string{"id", "date", "description", "category", "subcategory", "amount", "notes", "account"}

// Dataset writes all.csv and transactions.db under dir, creating it if
// needed. Rows are emitted in snapshot load order.
func Dataset(ctx context.Context, snapshot *ledger.Snapshot, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("dataset: failed to create output directory: %w", err)
	}
	if err := writeCSV(snapshot, filepath.Join(dir, "all.csv")); err != nil {
		return err
	}
	if err := writeSQLite(ctx, snapshot, filepath.Join(dir, "transactions.db")); err != nil {
		return err
	}
	return nil
}

func writeCSV(snapshot *ledger.Snapshot, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: failed to create %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("dataset: failed to write csv header: %w", err)
	}
	for _, record := range snapshot.Records() {
		row := []string{
			fmt.Sprintf("%d", record.ID),
			record.Date.Format(domain.DateLayout),
			record.Description,
			record.Category,
			record.Subcategory,
			record.Amount.String(),
			record.Notes,
			record.Account,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("dataset: failed to write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("dataset: failed to flush csv: %w", err)
	}
	return nil
}

func writeSQLite(ctx context.Context, snapshot *ledger.Snapshot, path string) error {
	// Regenerate from scratch so the snapshot never drifts from the ledger.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("dataset: failed to remove stale %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("dataset: failed to open %s: %w", path, err)
	}
	defer db.Close()

	createStmt := `
		CREATE TABLE transactions (
			id          INTEGER PRIMARY KEY,
			date        TEXT,
			description TEXT,
			category    TEXT,
			subcategory TEXT,
			amount      TEXT,
			notes       TEXT,
			account     TEXT
		)`
	if _, err := db.ExecContext(ctx, createStmt); err != nil {
		return fmt.Errorf("dataset: failed to create sqlite table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dataset: failed to begin sqlite transaction: %w", err)
	}
	defer tx.Rollback()

	insertStmt := `INSERT INTO transactions (id, date, description, category, subcategory, amount, notes, account)
                   VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, record := range snapshot.Records() {
		_, err := tx.ExecContext(ctx, insertStmt,
			record.ID,
			record.Date.Format(domain.DateLayout),
			record.Description,
			record.Category,
			record.Subcategory,
			record.Amount.String(),
			record.Notes,
			record.Account,
		)
		if err != nil {
			return fmt.Errorf("dataset: failed to insert sqlite row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dataset: failed to commit sqlite transaction: %w", err)
	}
	return nil
}
