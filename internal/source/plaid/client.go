// internal/source/plaid/client.go

// Package plaid fetches raw transactions from the Plaid aggregation API and
// converts them into ledger transaction records.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"dinero/internal/domain"
	"dinero/internal/util"
)

// Config holds API credentials and account wiring.
type Config struct {
	ClientID string
	Secret   string
	// BaseURL is the API endpoint, e.g. "https://sandbox.plaid.com".
	BaseURL string
	// Tokens maps an institution name to its access token.
	Tokens map[string]string
	// AccountIDToName maps Plaid account IDs to ledger account names.
	AccountIDToName map[string]string
}

// Client talks to the Plaid transactions API. Construct one per run and pass
// it by reference; there is deliberately no package-level singleton.
type Client struct {
	cfg      Config
	http     *http.Client
	location *time.Location
	logger   *slog.Logger
}

// NewClient creates a Plaid client. Dates on fetched records are normalized
// to loc.
func NewClient(cfg Config, httpClient *http.Client, loc *time.Location, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Client{cfg: cfg, http: httpClient, location: loc, logger: logger}
}

// Result is the outcome of fetching one institution's transactions. Pending
// transactions are reported separately; they change shape once they post and
// are excluded from reconciliation unless the caller opts in.
type Result struct {
	Account string
	Records []*domain.Transaction
	Pending []*domain.Transaction
}

// FetchAll fetches transactions for every configured institution in the
// date range [start, end]. A credential-expired error on one institution is
// reported and does not abort the others; that institution simply yields no
// records for the run. Any other per-institution error aborts the fetch.
func (c *Client) FetchAll(ctx context.Context, start, end time.Time) ([]Result, []error, error) {
	names := make([]string, 0, len(c.cfg.Tokens))
	for name := range c.cfg.Tokens {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []Result
	var credentialErrs []error
	for _, name := range names {
		result, err := c.Fetch(ctx, name, start, end)
		if err != nil {
			if util.IsError(err, util.ErrCredentialsExpired) {
				c.logger.Error("Account needs re-authorization", "account", name, "error", err)
				credentialErrs = append(credentialErrs, err)
				continue
			}
			return nil, credentialErrs, fmt.Errorf("fetch all: institution %s: %w", name, err)
		}
		results = append(results, result)
	}
	return results, credentialErrs, nil
}

// Fetch fetches transactions for one institution, following Plaid's
// pagination contract: repeat the request with a growing offset until the
// cumulative received count equals the reported total.
func (c *Client) Fetch(ctx context.Context, institution string, start, end time.Time) (Result, error) {
	token, ok := c.cfg.Tokens[institution]
	if !ok {
		return Result{}, fmt.Errorf("fetch: no access token configured for institution %q", institution)
	}

	var raw []rawTransaction
	total := -1
	for total < 0 || len(raw) < total {
		page, pageTotal, err := c.fetchPage(ctx, token, start, end, len(raw))
		if err != nil {
			if util.IsError(err, util.ErrCredentialsExpired) {
				return Result{}, fmt.Errorf("institution %s: %w", institution, err)
			}
			return Result{}, err
		}
		total = pageTotal
		if len(page) == 0 {
			break // defensive: a lying total must not loop forever
		}
		raw = append(raw, page...)
	}
	c.logger.Info("Transactions downloaded", "institution", institution, "records", len(raw))

	result := Result{Account: institution}
	for _, tr := range raw {
		record, err := c.toTransaction(tr)
		if err != nil {
			return Result{}, fmt.Errorf("fetch: institution %s: %w", institution, err)
		}
		if tr.Pending {
			result.Pending = append(result.Pending, record)
		} else {
			result.Records = append(result.Records, record)
		}
	}
	c.logger.Info("Transactions pending", "institution", institution, "records", len(result.Pending))
	c.logger.Info("Transactions not pending", "institution", institution, "records", len(result.Records))
	return result, nil
}

type rawTransaction struct {
	AccountID string      `json:"account_id"`
	Amount    json.Number `json:"amount"`
	Date      string      `json:"date"`
	Name      string      `json:"name"`
	Pending   bool        `json:"pending"`
}

type transactionsResponse struct {
	Transactions      []rawTransaction `json:"transactions"`
	TotalTransactions int              `json:"total_transactions"`
}

type apiError struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

func (c *Client) fetchPage(ctx context.Context, token string, start, end time.Time, offset int) ([]rawTransaction, int, error) {
	payload := map[string]interface{}{
		"client_id":    c.cfg.ClientID,
		"secret":       c.cfg.Secret,
		"access_token": token,
		"start_date":   start.Format(domain.DateLayout),
		"end_date":     end.Format(domain.DateLayout),
		"options":      map[string]interface{}{"offset": offset},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch page: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/transactions/get", bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("fetch page: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch page: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr apiError
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.ErrorCode == "ITEM_LOGIN_REQUIRED" {
			return nil, 0, fmt.Errorf("%w: %s", util.ErrCredentialsExpired, apiErr.ErrorMessage)
		}
		return nil, 0, fmt.Errorf("fetch page: plaid returned %s: %s", resp.Status, payload)
	}

	var parsed transactionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("fetch page: failed to decode response: %w", err)
	}
	return parsed.Transactions, parsed.TotalTransactions, nil
}

// accountName resolves a Plaid account ID to a ledger account name. A
// missing mapping is logged loudly and degrades to the raw ID; it never
// aborts an import.
func (c *Client) accountName(accountID string) string {
	if name, ok := c.cfg.AccountIDToName[accountID]; ok {
		return name
	}
	c.logger.Error("Account ID not found in the accounts map, add it to the settings file under plaid.account_id_to_name",
		"account_id", accountID)
	return accountID
}

func (c *Client) toTransaction(tr rawTransaction) (*domain.Transaction, error) {
	date, err := time.ParseInLocation(domain.DateLayout, tr.Date, c.location)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction date %q: %w", tr.Date, err)
	}
	amount, err := decimal.NewFromString(tr.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("invalid transaction amount %q: %w", tr.Amount, err)
	}
	return domain.NewTransaction(date, tr.Name, amount, c.accountName(tr.AccountID), domain.NotePlaid), nil
}
