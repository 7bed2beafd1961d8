// internal/source/csvfile/csvfile.go

// Package csvfile parses delimited transaction exports into ledger records.
//
// Expected format:
//
//	date,description,amount[,category,subcategory]
//	2026-01-31,Deposits,5000.00
//	2026-01-31,Withdrawals,-1200.00
//
// Import is fail-fast: the first malformed row aborts the whole parse,
// naming the offending row. Rows are numbered as in the file, so the header
// is row 1 and the first data row is row 2. Partial success is deliberately
// not offered here; per-record tolerance belongs to reconciliation, not
// parsing.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"dinero/internal/domain"
	"dinero/internal/rules"
	"dinero/internal/util"
)

var requiredColumns = []string{"date", "description", "amount"}

// Parse reads the CSV file at path and returns one record per non-blank
// data row, attributed to the given account. Dates are interpreted in loc.
// Rows without an explicit category are run through the categorizer.
func Parse(path, account string, loc *time.Location, categorizer rules.Categorizer) ([]*domain.Transaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer file.Close()
	return ParseReader(file, account, loc, categorizer)
}

// ParseReader is Parse over an arbitrary reader.
func ParseReader(r io.Reader, account string, loc *time.Location, categorizer rules.Categorizer) ([]*domain.Transaction, error) {
	if loc == nil {
		loc = time.UTC
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // row width validated per row below

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", util.ErrMissingColumns, strings.Join(missing, ", "))
	}

	var transactions []*domain.Transaction
	rowNum := 1 // header is row 1; data rows start at 2
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to read record: %w", rowNum, err)
		}

		transaction, err := parseRow(record, columns, account, loc, categorizer)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		if transaction == nil {
			continue // blank row
		}
		transactions = append(transactions, transaction)
	}
	return transactions, nil
}

// parseRow converts one CSV record. It returns (nil, nil) for a blank row —
// all three required fields empty — and an error when only some of them are.
func parseRow(record []string, columns map[string]int, account string, loc *time.Location, categorizer rules.Categorizer) (*domain.Transaction, error) {
	dateStr := field(record, columns, "date")
	description := field(record, columns, "description")
	amountStr := field(record, columns, "amount")

	if dateStr == "" && description == "" && amountStr == "" {
		return nil, nil
	}
	if dateStr == "" {
		return nil, fmt.Errorf("missing date")
	}
	if description == "" {
		return nil, fmt.Errorf("missing description")
	}
	if amountStr == "" {
		return nil, fmt.Errorf("missing amount")
	}

	date, err := time.ParseInLocation(domain.DateLayout, dateStr, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", dateStr)
	}

	// Amounts may carry thousands separators ("1,200.00").
	amount, err := decimal.NewFromString(strings.ReplaceAll(amountStr, ",", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", amountStr)
	}

	category := field(record, columns, "category")
	subcategory := field(record, columns, "subcategory")
	if category == "" && categorizer != nil {
		category, subcategory = categorizer.Categorize(description)
	}

	transaction := domain.NewTransaction(date, description, amount, account, domain.NoteCSVImport)
	transaction.Category = category
	transaction.Subcategory = subcategory
	return transaction, nil
}

func field(record []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
