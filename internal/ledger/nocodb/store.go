// internal/ledger/nocodb/store.go

// Package nocodb implements the ledger.Store contract on a NocoDB project
// that keeps one transactions table per calendar year. Records whose date
// falls outside the table's year cannot be committed here, which is what
// feeds the Errored partition during reconciliation.
package nocodb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"dinero/internal/domain"
	"dinero/internal/ledger"
)

const pageSize = 1000

// Config holds connection settings for one NocoDB project.
type Config struct {
	Host    string // e.g. "https://noco.example.com"
	Token   string // xc-token API token
	Org     string
	Project string
}

// Store implements ledger.Store against a yearly NocoDB table. The table
// name is the four-digit year.
type Store struct {
	cfg    Config
	year   int
	client *http.Client
	logger *slog.Logger
}

// NewStore creates a store bound to the table for the given year.
func NewStore(cfg Config, year int, client *http.Client, logger *slog.Logger) *Store {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Store{cfg: cfg, year: year, client: client, logger: logger}
}

// Scope returns the calendar year this store is constrained to.
func (s *Store) Scope() (int, bool) {
	return s.year, true
}

// row is the NocoDB wire representation of one transaction.
type row struct {
	ID          int64       `json:"Id,omitempty"`
	Account     string      `json:"Account"`
	Amount      json.Number `json:"Amount"`
	Category    string      `json:"Category"`
	Date        string      `json:"Date"`
	Description string      `json:"Description"`
	Subcategory string      `json:"Subcategory"`
	Notes       string      `json:"Notes,omitempty"`
}

type listResponse struct {
	List []row `json:"list"`
}

// LoadSnapshot pages through the yearly table until a short page and builds
// the in-memory snapshot.
func (s *Store) LoadSnapshot(ctx context.Context) (*ledger.Snapshot, error) {
	var records []domain.Transaction
	for offset := 0; ; offset += pageSize {
		page, err := s.listRows(ctx, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		for _, r := range page {
			record, err := r.toTransaction()
			if err != nil {
				return nil, fmt.Errorf("load snapshot: row %d: %w", r.ID, err)
			}
			records = append(records, record)
		}
		if len(page) < pageSize {
			break
		}
	}
	s.logger.Info("Loaded ledger snapshot", "year", s.year, "records", len(records))
	return ledger.NewSnapshot(records), nil
}

// Commit inserts the batch through the bulk endpoint: one HTTP call carries
// every record, so a failed call persists nothing.
func (s *Store) Commit(ctx context.Context, records []*domain.Transaction) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	rows := make([]row, 0, len(records))
	for _, record := range records {
		if record.Date.Year() != s.year {
			return 0, fmt.Errorf("commit: record %q dated %s does not belong to table %d",
				record.Description, record.Date.Format(domain.DateLayout), s.year)
		}
		rows = append(rows, rowFromTransaction(record))
	}

	body, err := json.Marshal(rows)
	if err != nil {
		return 0, fmt.Errorf("commit: failed to encode records: %w", err)
	}
	endpoint := fmt.Sprintf("%s/api/v1/db/data/bulk/%s/%s/%s",
		s.cfg.Host, s.cfg.Org, s.cfg.Project, s.tableName())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("commit: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xc-token", s.cfg.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("commit: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("commit: nocodb returned %s: %s", resp.Status, payload)
	}

	s.logger.Info("Committed new transactions", "year", s.year, "records", len(records))
	return len(records), nil
}

func (s *Store) tableName() string {
	return strconv.Itoa(s.year)
}

func (s *Store) listRows(ctx context.Context, limit, offset int) ([]row, error) {
	endpoint := fmt.Sprintf("%s/api/v1/db/data/%s/%s/%s",
		s.cfg.Host, s.cfg.Org, s.cfg.Project, s.tableName())
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build list request: %w", err)
	}
	req.Header.Set("xc-token", s.cfg.Token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("nocodb returned %s: %s", resp.Status, payload)
	}

	var parsed listResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode list response: %w", err)
	}
	return parsed.List, nil
}

func (r row) toTransaction() (domain.Transaction, error) {
	date, err := time.ParseInLocation(domain.DateLayout, r.Date, time.UTC)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("invalid date %q: %w", r.Date, err)
	}
	amount, err := decimal.NewFromString(r.Amount.String())
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("invalid amount %q: %w", r.Amount, err)
	}
	return domain.Transaction{
		ID:          r.ID,
		Date:        date,
		Description: r.Description,
		Category:    r.Category,
		Subcategory: r.Subcategory,
		Amount:      amount,
		Notes:       r.Notes,
		Account:     r.Account,
	}, nil
}

func rowFromTransaction(t *domain.Transaction) row {
	return row{
		Account:     t.Account,
		Amount:      json.Number(t.Amount.String()),
		Category:    t.Category,
		Date:        t.Date.Format(domain.DateLayout),
		Description: t.Description,
		Subcategory: t.Subcategory,
		Notes:       t.Notes,
	}
}
