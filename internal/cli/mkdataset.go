// internal/cli/mkdataset.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"dinero/internal/export"
)

var datasetDir string

var mkdatasetCmd = &cobra.Command{
	Use:   "mkdataset",
	Short: "Export the ledger to a CSV mirror and a SQLite snapshot",
	Long: `Regenerate the derived dataset files (all.csv and transactions.db)
from the relational ledger. The exports are never read back; the database
stays the source of truth.`,
	RunE: runMkdataset,
}

func init() {
	mkdatasetCmd.Flags().StringVar(&datasetDir, "out", "data",
		"Directory to write the dataset files to")
	rootCmd.AddCommand(mkdatasetCmd)
}

func runMkdataset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	application, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer application.Shutdown(ctx)

	store, err := application.PostgresStore()
	if err != nil {
		return err
	}
	snapshot, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	if err := export.Dataset(ctx, snapshot, datasetDir); err != nil {
		return err
	}
	fmt.Printf("Exported %d records to %s\n", snapshot.Len(), datasetDir)
	return nil
}
