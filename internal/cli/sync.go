// internal/cli/sync.go
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"dinero/internal/domain"
	"dinero/internal/reconcile"
	"dinero/internal/source/plaid"
)

var (
	syncDate       string
	syncDays       int
	includePending bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch transactions from Plaid, reconcile and commit the new ones",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncDate, "date", "",
		"Last day of the fetch range, YYYY-MM-DD (default today)")
	syncCmd.Flags().IntVar(&syncDays, "days", 90,
		"Number of days back from --date to fetch")
	syncCmd.Flags().BoolVar(&includePending, "pending", false,
		"Also reconcile pending transactions")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	application, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer application.Shutdown(ctx)

	end := time.Now().In(application.Location)
	if syncDate != "" {
		end, err = time.ParseInLocation(domain.DateLayout, syncDate, application.Location)
		if err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", syncDate)
		}
	}
	start := end.AddDate(0, 0, -syncDays)

	client := application.PlaidClient()
	results, credentialErrs, err := client.FetchAll(ctx, start, end)
	if err != nil {
		return err
	}

	store, err := application.OpenStore(ctx, end.Year())
	if err != nil {
		return err
	}
	snapshot, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}

	// Per-account breakdown first, then one reconciliation over the whole
	// batch that feeds the commit.
	var candidates []*plaidResult
	for i := range results {
		candidates = append(candidates, &plaidResult{Result: results[i]})
	}
	for _, result := range candidates {
		records := result.reconcilable(includePending)
		partition, err := reconcile.Run(records, snapshot, store, application.Rules, application.Logger)
		if err != nil {
			return err
		}
		printAccountSummary(result.Account, result.Result, partition)
	}

	var batch []*domain.Transaction
	for _, result := range candidates {
		batch = append(batch, result.reconcilable(includePending)...)
	}
	partition, err := reconcile.Run(batch, snapshot, store, application.Rules, application.Logger)
	if err != nil {
		return err
	}

	printSyncSummary(start, end, snapshot.Len(), len(batch), partition, credentialErrs)

	if len(partition.New) == 0 {
		fmt.Println("No new transactions to commit.")
		return nil
	}
	if !confirm("Insert transactions to the ledger?") {
		fmt.Println("Sync cancelled.")
		return nil
	}
	fmt.Printf("Inserting %d new records...\n", len(partition.New))
	if _, err := store.Commit(ctx, partition.New); err != nil {
		return err
	}
	fmt.Println("Done")
	return nil
}

type plaidResult struct {
	plaid.Result
}

func (r *plaidResult) reconcilable(withPending bool) []*domain.Transaction {
	if !withPending {
		return r.Records
	}
	out := make([]*domain.Transaction, 0, len(r.Records)+len(r.Pending))
	out = append(out, r.Records...)
	out = append(out, r.Pending...)
	return out
}

func printAccountSummary(account string, result plaid.Result, partition reconcile.Partition) {
	fmt.Println(strings.Repeat("-", 80))
	fmt.Println(account)
	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("Queried: %d (pending %d)\n", len(result.Records)+len(result.Pending), len(result.Pending))
	fmt.Printf("New: %d  Existing: %d  Errored: %d\n",
		len(partition.New), len(partition.Existing), len(partition.Errored))
	for _, tr := range partition.New {
		fmt.Printf("  %s  %10s  %s\n", tr.Date.Format(domain.DateLayout), tr.Amount.StringFixed(2), tr.Description)
	}
	fmt.Println()
}

func printSyncSummary(start, end time.Time, ledgerSize, analysed int, partition reconcile.Partition, credentialErrs []error) {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("All accounts summary from %s to %s:\n",
		start.Format(domain.DateLayout), end.Format(domain.DateLayout))
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Records in ledger: %d\n", ledgerSize)
	fmt.Printf("Transactions analysed: %d\n", analysed)
	fmt.Printf("New records to be inserted: %d\n", len(partition.New))
	fmt.Printf("Existing transactions: %d\n", len(partition.Existing))
	fmt.Printf("Errored (outside store scope): %d\n", len(partition.Errored))
	for _, err := range credentialErrs {
		fmt.Printf("NEEDS ATTENTION: %v\n", err)
	}
	fmt.Println()
}
