package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/panetree/internal/config"
)

var schemaCmd = &cobra.Command{
	Use:       "schema [layout|config]",
	Short:     "Print a JSON schema",
	Long:      `Print the JSON schema of an exported layout file (default) or of config.toml.`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"layout", "config"},
	RunE:      runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	schema := config.SnapshotSchema()
	if len(args) == 1 && args[0] == "config" {
		schema = config.Schema()
	}
	data, err := config.MarshalSchema(schema)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
