// internal/cli/mkrules.go
package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"dinero/internal/rules"
)

var minSupport int

var mkrulesCmd = &cobra.Command{
	Use:   "mkrules",
	Short: "Mine categorization rules from the ledger history",
	Long: `Scan the full ledger for descriptions that repeatedly carry the same
category and save them as rules. A description qualifies when at least
--min-support records share its (category, subcategory) pair.`,
	RunE: runMkrules,
}

func init() {
	mkrulesCmd.Flags().IntVar(&minSupport, "min-support", rules.DefaultMinSupport,
		"Minimum number of matching records for a rule")
	rootCmd.AddCommand(mkrulesCmd)
}

func runMkrules(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	application, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer application.Shutdown(ctx)

	store, err := application.OpenStore(ctx, time.Now().In(application.Location).Year())
	if err != nil {
		return err
	}
	snapshot, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}

	table := rules.Mine(snapshot.Records(), minSupport)

	descriptions := make([]string, 0, len(table))
	for description := range table {
		descriptions = append(descriptions, description)
	}
	sort.Strings(descriptions)

	fmt.Println("Most common transactions:")
	for _, description := range descriptions {
		rule := table[description]
		fmt.Printf("  %-50s -> %s / %s\n", description, rule[0], rule[1])
	}

	target := application.Config.RulesPath
	if !confirm(fmt.Sprintf("Do you want to save these rules to %q?", target)) {
		fmt.Println("Rules not saved.")
		return nil
	}
	if err := table.Save(target); err != nil {
		return err
	}
	fmt.Printf("Saved %d rules to %s\n", len(table), target)
	return nil
}
