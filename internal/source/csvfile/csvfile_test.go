// internal/source/csvfile/csvfile_test.go
package csvfile

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinero/internal/domain"
	"dinero/internal/rules"
	"dinero/internal/util"
)

func parseString(t *testing.T, content string, categorizer rules.Categorizer) ([]*domain.Transaction, error) {
	t.Helper()
	return ParseReader(strings.NewReader(content), "Brokerage Account", time.UTC, categorizer)
}

func TestParse_RoundTrip(t *testing.T) {
	content := "date,description,amount\n" +
		"2026-01-31,Deposits,5000.00\n" +
		"2026-01-31,Withdrawals,-1200.00\n"

	transactions, err := parseString(t, content, nil)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	assert.Equal(t, "Deposits", transactions[0].Description)
	assert.True(t, transactions[0].Amount.Equal(decimal.RequireFromString("5000.00")))
	assert.Equal(t, "2026-01-31", transactions[0].Date.Format(domain.DateLayout))

	assert.Equal(t, "Withdrawals", transactions[1].Description)
	assert.True(t, transactions[1].Amount.Equal(decimal.RequireFromString("-1200.00")))
	assert.Equal(t, "2026-01-31", transactions[1].Date.Format(domain.DateLayout))

	for _, tr := range transactions {
		assert.Equal(t, "Brokerage Account", tr.Account)
		assert.Equal(t, domain.NoteCSVImport, tr.Notes)
		assert.Zero(t, tr.ID)
	}
}

func TestParse_ThousandsSeparatorsStripped(t *testing.T) {
	content := "date,description,amount\n" +
		"2026-01-31,Bonus,\"12,500.00\"\n"

	transactions, err := parseString(t, content, nil)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.True(t, transactions[0].Amount.Equal(decimal.RequireFromString("12500.00")))
}

func TestParse_BlankRowsSkipped(t *testing.T) {
	content := "date,description,amount\n" +
		"2026-01-31,Deposits,5000.00\n" +
		",,\n" +
		"2026-02-01,Withdrawals,-1200.00\n"

	transactions, err := parseString(t, content, nil)
	require.NoError(t, err)
	assert.Len(t, transactions, 2)
}

func TestParse_MissingAmountAbortsWithRowNumber(t *testing.T) {
	content := "date,description,amount\n" +
		"2026-01-31,Rent,\n"

	transactions, err := parseString(t, content, nil)
	require.Error(t, err)
	assert.Nil(t, transactions)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "missing amount")
}

func TestParse_MissingDateAbortsWithRowNumber(t *testing.T) {
	content := "date,description,amount\n" +
		"2026-01-31,Deposits,5000.00\n" +
		",Rent,-1200.00\n"

	_, err := parseString(t, content, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "missing date")
}

func TestParse_BadDateIsFatal(t *testing.T) {
	content := "date,description,amount\n" +
		"31/01/2026,Rent,-1200.00\n"

	_, err := parseString(t, content, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestParse_BadAmountIsFatal(t *testing.T) {
	content := "date,description,amount\n" +
		"2026-01-31,Rent,twelve\n"

	_, err := parseString(t, content, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "invalid amount")
}

func TestParse_MissingRequiredColumns(t *testing.T) {
	content := "date,description\n" +
		"2026-01-31,Rent\n"

	_, err := parseString(t, content, nil)
	require.Error(t, err)
	assert.True(t, util.IsError(err, util.ErrMissingColumns))
	assert.Contains(t, err.Error(), "amount")
}

func TestParse_ExplicitCategoryColumnsRespected(t *testing.T) {
	table := rules.Table{"Coffee Shop": {"Food", "Coffee"}}
	content := "date,description,amount,category,subcategory\n" +
		"2026-01-31,Coffee Shop,-4.50,Business,Meetings\n"

	transactions, err := parseString(t, content, table)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "Business", transactions[0].Category)
	assert.Equal(t, "Meetings", transactions[0].Subcategory)
}

func TestParse_CategorizerFillsMissingCategory(t *testing.T) {
	table := rules.Table{"Coffee Shop": {"Food", "Coffee"}}
	content := "date,description,amount\n" +
		"2026-01-31,Coffee Shop,-4.50\n" +
		"2026-01-31,Unknown Vendor,-9.99\n"

	transactions, err := parseString(t, content, table)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, "Food", transactions[0].Category)
	assert.Equal(t, "Coffee", transactions[0].Subcategory)
	assert.Equal(t, "", transactions[1].Category)
	assert.Equal(t, "", transactions[1].Subcategory)
}

func TestParse_DatesNormalizedToLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	content := "date,description,amount\n" +
		"2026-01-31,Deposits,5000.00\n"

	transactions, err := ParseReader(strings.NewReader(content), "Brokerage Account", loc, nil)
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, loc, transactions[0].Date.Location())
	assert.Equal(t, "2026-01-31", transactions[0].Date.Format(domain.DateLayout))
}
