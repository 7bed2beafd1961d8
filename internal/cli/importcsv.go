// internal/cli/importcsv.go
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dinero/internal/domain"
	"dinero/internal/reconcile"
	"dinero/internal/source/csvfile"
)

var importAccount string

var importCSVCmd = &cobra.Command{
	Use:   "import-csv FILE",
	Short: "Import transactions from a CSV file",
	Long: `Import transactions from a CSV file with columns
date,description,amount and optional category,subcategory columns. Rows are
deduplicated against the ledger exactly like a Plaid sync.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportCSV,
}

func init() {
	importCSVCmd.Flags().StringVar(&importAccount, "account", "",
		"Account name to associate with all imported transactions (required)")
	_ = importCSVCmd.MarkFlagRequired("account")
	rootCmd.AddCommand(importCSVCmd)
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	application, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer application.Shutdown(ctx)

	path := args[0]
	runID := uuid.NewString()
	logger := application.Logger.With("run_id", runID)
	logger.Info("Starting CSV import", "file", path, "account", importAccount)

	// Fail-fast: any malformed row aborts before the ledger is touched.
	candidates, err := csvfile.Parse(path, importAccount, application.Location, application.Rules)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		logger.Warn("No transactions found in CSV file")
		return nil
	}

	store, err := application.OpenStore(ctx, time.Now().In(application.Location).Year())
	if err != nil {
		return err
	}
	snapshot, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	partition, err := reconcile.Run(candidates, snapshot, store, application.Rules, logger)
	if err != nil {
		return err
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Import from: %s\n", path)
	fmt.Printf("Account: %s\n", importAccount)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Transactions in CSV: %d\n", len(candidates))
	fmt.Printf("New transactions: %d\n", len(partition.New))
	fmt.Printf("Already existing (will skip): %d\n", len(partition.Existing))
	if len(partition.Errored) > 0 {
		fmt.Printf("Outside store scope (will skip): %d\n", len(partition.Errored))
	}
	fmt.Println()

	if len(partition.New) == 0 {
		fmt.Println("No new transactions to import.")
		return nil
	}

	fmt.Println(strings.Repeat("-", 80))
	fmt.Println("Transactions to be imported:")
	fmt.Println(strings.Repeat("-", 80))
	for _, tr := range partition.New {
		categoryStr := ""
		if tr.Category != "" {
			categoryStr = fmt.Sprintf(" [%s]", tr.Category)
		}
		fmt.Printf("  %s  %10s  %s%s\n",
			tr.Date.Format(domain.DateLayout), tr.Amount.StringFixed(2), tr.Description, categoryStr)
	}
	fmt.Println()

	if !confirm("Import these transactions?") {
		fmt.Println("Import cancelled.")
		return nil
	}
	fmt.Printf("Inserting %d new records...\n", len(partition.New))
	if _, err := store.Commit(ctx, partition.New); err != nil {
		return err
	}
	fmt.Println("Done")
	return nil
}
