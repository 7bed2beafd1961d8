// internal/domain/transaction.go
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Note values record where a transaction came from.
const (
	NotePlaid     = "new"        // fetched from the aggregation API
	NoteCSVImport = "csv-import" // imported from a CSV file
)

// DateLayout is the calendar-date form used everywhere a date crosses a
// boundary (CSV, rule files, remote APIs, identity comparison).
const DateLayout = "2006-01-02"

// Transaction represents one financial transaction record.
//
// Only the calendar date of Date is significant; it is normalized to the
// configured reference zone when the record is created and never shifted
// afterwards.
type Transaction struct {
	ID          int64           `db:"id" json:"id"`                   // Primary key, BIGSERIAL in DB; zero until committed
	Date        time.Time       `db:"date" json:"date"`               // Calendar date of the transaction
	Description string          `db:"description" json:"description"` // Free-text description from the source
	Category    string          `db:"category" json:"category"`       // Assigned category, possibly empty
	Subcategory string          `db:"subcategory" json:"subcategory"` // Assigned subcategory, possibly empty
	Amount      decimal.Decimal `db:"amount" json:"amount"`           // Signed amount, negative = outflow
	Notes       string          `db:"notes" json:"notes"`             // Provenance tag, see Note* constants
	Account     string          `db:"account" json:"account"`         // Source account name
}

// NewTransaction creates an uncommitted Transaction instance.
func NewTransaction(date time.Time, description string, amount decimal.Decimal, account, notes string) *Transaction {
	return &Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Account:     account,
		Notes:       notes,
	}
}

// SameIdentity reports whether two records describe the same real-world
// transaction. The identity key is (date, account, description, amount);
// category, subcategory, notes and the database ID are deliberately excluded.
//
// Known limitation: two genuinely distinct transactions with identical date,
// account, description and amount are indistinguishable under this key and
// will collapse to one record. The upstream product has never resolved this;
// do not widen the key without guidance.
func SameIdentity(a, b *Transaction) bool {
	return a.Date.Format(DateLayout) == b.Date.Format(DateLayout) &&
		a.Account == b.Account &&
		a.Description == b.Description &&
		a.Amount.Equal(b.Amount)
}

// Key returns the canonical string form of the identity key. Records with
// equal keys satisfy SameIdentity, so the key is safe to use for indexed
// dedup lookups in place of a pairwise scan.
func (t *Transaction) Key() string {
	return fmt.Sprintf("%s\x1f%s\x1f%s\x1f%s",
		t.Date.Format(DateLayout), t.Account, t.Description, t.Amount.String())
}

func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction(%d): %s %s %s",
		t.ID, t.Date.Format(DateLayout), t.Description, t.Amount.String())
}
