// internal/source/plaid/client_test.go
package plaid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dinero/internal/util"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fetchRequest struct {
	AccessToken string `json:"access_token"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Options     struct {
		Offset int `json:"offset"`
	} `json:"options"`
}

func rangeDates(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	start, err := time.Parse("2006-01-02", "2026-01-01")
	require.NoError(t, err)
	end, err := time.Parse("2006-01-02", "2026-03-31")
	require.NoError(t, err)
	return start, end
}

func mkRaw(i int) map[string]interface{} {
	return map[string]interface{}{
		"account_id": "acc-1",
		"amount":     float64(i) + 0.25,
		"date":       "2026-02-01",
		"name":       fmt.Sprintf("Vendor %d", i),
		"pending":    false,
	}
}

func TestFetch_FollowsPaginationUntilTotal(t *testing.T) {
	const total = 5
	const pageSize = 2
	var offsets []int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions/get", r.URL.Path)
		var req fetchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		offsets = append(offsets, req.Options.Offset)

		var page []map[string]interface{}
		for i := req.Options.Offset; i < total && len(page) < pageSize; i++ {
			page = append(page, mkRaw(i))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transactions":       page,
			"total_transactions": total,
		})
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:         server.URL,
		Tokens:          map[string]string{"Checking": "token-1"},
		AccountIDToName: map[string]string{"acc-1": "Checking"},
	}, server.Client(), time.UTC, testLogger())

	start, end := rangeDates(t)
	result, err := client.Fetch(context.Background(), "Checking", start, end)
	require.NoError(t, err)

	assert.Len(t, result.Records, total)
	// Each page blocks before the next is requested, with the offset set to
	// the running total.
	assert.Equal(t, []int{0, 2, 4}, offsets)
}

func TestFetch_SplitsPendingTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posted := mkRaw(1)
		pending := mkRaw(2)
		pending["pending"] = true
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transactions":       []map[string]interface{}{posted, pending},
			"total_transactions": 2,
		})
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:         server.URL,
		Tokens:          map[string]string{"Checking": "token-1"},
		AccountIDToName: map[string]string{"acc-1": "Checking"},
	}, server.Client(), time.UTC, testLogger())

	start, end := rangeDates(t)
	result, err := client.Fetch(context.Background(), "Checking", start, end)
	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
	assert.Len(t, result.Pending, 1)
}

func TestFetch_UnknownAccountIDFallsBackToRawID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := mkRaw(1)
		raw["account_id"] = "acc-unmapped"
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transactions":       []map[string]interface{}{raw},
			"total_transactions": 1,
		})
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:         server.URL,
		Tokens:          map[string]string{"Checking": "token-1"},
		AccountIDToName: map[string]string{"acc-1": "Checking"},
	}, server.Client(), time.UTC, testLogger())

	start, end := rangeDates(t)
	result, err := client.Fetch(context.Background(), "Checking", start, end)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "acc-unmapped", result.Records[0].Account)
}

func TestFetchAll_CredentialErrorDoesNotAbortOtherAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req fetchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.AccessToken == "token-expired" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"error_type":    "ITEM_ERROR",
				"error_code":    "ITEM_LOGIN_REQUIRED",
				"error_message": "the login details of this item have changed",
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transactions":       []map[string]interface{}{mkRaw(1)},
			"total_transactions": 1,
		})
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL: server.URL,
		Tokens: map[string]string{
			"Broken":   "token-expired",
			"Checking": "token-1",
		},
		AccountIDToName: map[string]string{"acc-1": "Checking"},
	}, server.Client(), time.UTC, testLogger())

	start, end := rangeDates(t)
	results, credentialErrs, err := client.FetchAll(context.Background(), start, end)
	require.NoError(t, err)

	// The healthy account still came through; the broken one is reported.
	require.Len(t, results, 1)
	assert.Equal(t, "Checking", results[0].Account)
	require.Len(t, credentialErrs, 1)
	assert.True(t, util.IsError(credentialErrs[0], util.ErrCredentialsExpired))
	assert.Contains(t, credentialErrs[0].Error(), "Broken")
}

func TestFetch_GenericErrorIsNotCredentialError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{
			"error_type": "API_ERROR",
			"error_code": "INTERNAL_SERVER_ERROR",
		})
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL: server.URL,
		Tokens:  map[string]string{"Checking": "token-1"},
	}, server.Client(), time.UTC, testLogger())

	start, end := rangeDates(t)
	_, err := client.Fetch(context.Background(), "Checking", start, end)
	require.Error(t, err)
	assert.False(t, util.IsError(err, util.ErrCredentialsExpired))
}

func TestFetch_DatesNormalizedToLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transactions":       []map[string]interface{}{mkRaw(1)},
			"total_transactions": 1,
		})
	}))
	defer server.Close()

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	client := NewClient(Config{
		BaseURL:         server.URL,
		Tokens:          map[string]string{"Checking": "token-1"},
		AccountIDToName: map[string]string{"acc-1": "Checking"},
	}, server.Client(), loc, testLogger())

	start, end := rangeDates(t)
	result, err := client.Fetch(context.Background(), "Checking", start, end)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, loc, result.Records[0].Date.Location())
	assert.Equal(t, "2026-02-01", result.Records[0].Date.Format("2006-01-02"))
}
