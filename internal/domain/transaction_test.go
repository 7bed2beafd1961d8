// internal/domain/transaction_test.go
package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func mkTransaction(t *testing.T, date, description, amount, account string) *Transaction {
	t.Helper()
	day, err := time.Parse(DateLayout, date)
	assert.NoError(t, err)
	value, err := decimal.NewFromString(amount)
	assert.NoError(t, err)
	return NewTransaction(day, description, value, account, NotePlaid)
}

func TestSameIdentity_IgnoresNonKeyFields(t *testing.T) {
	a := mkTransaction(t, "2026-01-31", "Coffee Shop", "-4.50", "Checking")
	b := mkTransaction(t, "2026-01-31", "Coffee Shop", "-4.50", "Checking")

	b.ID = 42
	b.Category = "Food"
	b.Subcategory = "Coffee"
	b.Notes = NoteCSVImport

	assert.True(t, SameIdentity(a, b))
	assert.Equal(t, a.Key(), b.Key())
}

func TestSameIdentity_SensitiveToEveryKeyField(t *testing.T) {
	base := mkTransaction(t, "2026-01-31", "Coffee Shop", "-4.50", "Checking")

	otherDate := mkTransaction(t, "2026-02-01", "Coffee Shop", "-4.50", "Checking")
	otherDescription := mkTransaction(t, "2026-01-31", "Tea Shop", "-4.50", "Checking")
	otherAmount := mkTransaction(t, "2026-01-31", "Coffee Shop", "-4.51", "Checking")
	otherAccount := mkTransaction(t, "2026-01-31", "Coffee Shop", "-4.50", "Savings")

	assert.False(t, SameIdentity(base, otherDate))
	assert.False(t, SameIdentity(base, otherDescription))
	assert.False(t, SameIdentity(base, otherAmount))
	assert.False(t, SameIdentity(base, otherAccount))
}

func TestSameIdentity_AmountScaleDoesNotMatter(t *testing.T) {
	a := mkTransaction(t, "2026-01-31", "Deposits", "5000.00", "Brokerage")
	b := mkTransaction(t, "2026-01-31", "Deposits", "5000", "Brokerage")

	assert.True(t, SameIdentity(a, b))
	assert.Equal(t, a.Key(), b.Key())
}

func TestSameIdentity_ComparesCalendarDateOnly(t *testing.T) {
	a := mkTransaction(t, "2026-01-31", "Rent", "-1200.00", "Checking")
	b := mkTransaction(t, "2026-01-31", "Rent", "-1200.00", "Checking")
	b.Date = b.Date.Add(11 * time.Hour) // same calendar day

	assert.True(t, SameIdentity(a, b))
}
