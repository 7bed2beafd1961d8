// internal/cli/initdb.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the transactions table in PostgreSQL",
	RunE:  runInitDB,
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}

func runInitDB(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	application, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer application.Shutdown(ctx)

	if !confirm(fmt.Sprintf("Create tables on %q?", application.Config.DB.DBName)) {
		fmt.Println("Skipping table creation.")
		return nil
	}

	store, err := application.PostgresStore()
	if err != nil {
		return err
	}
	if err := store.InitSchema(ctx); err != nil {
		return err
	}
	fmt.Println("Table created")
	return nil
}
