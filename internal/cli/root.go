// internal/cli/root.go

// Package cli wires the cobra command tree. Commands stay thin: they
// assemble the application, call into the domain packages and render
// operator-facing summaries.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	app "dinero/internal"
	"dinero/internal/util"
)

var (
	cfgFile   string
	assumeYes bool
)

var rootCmd = &cobra.Command{
	Use:   "dinero",
	Short: "Ingest, deduplicate and categorize financial transactions",
	Long: `dinero pulls transactions from the Plaid aggregation API or from CSV
exports, reconciles them against the persisted ledger so nothing is recorded
twice, auto-assigns categories from a learned rule table and commits the
genuinely new records.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Path to the settings file (default ~/.config/dinero/settings.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false,
		"Assume yes for every confirmation prompt")
}

// newApp initializes the application for one command invocation.
func newApp(ctx context.Context) (*app.Application, error) {
	application := app.NewApplication()
	if err := application.Initialize(ctx, cfgFile); err != nil {
		return nil, err
	}
	return application, nil
}

// confirm asks the operator before a destructive or appending operation.
// The --yes flag and DINERO_ASSUME_YES both bypass the prompt.
func confirm(question string) bool {
	if assumeYes || util.NonInteractive() {
		return true
	}
	return util.Confirm(question)
}
