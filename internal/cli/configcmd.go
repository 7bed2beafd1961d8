// internal/cli/configcmd.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration with secrets redacted",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	application, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer application.Shutdown(cmd.Context())

	redacted := application.Config.Redacted()
	out, err := yaml.Marshal(redacted)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
