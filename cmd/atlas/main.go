package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/growthlab/atlas/cmd/atlas/commands"
	"github.com/growthlab/atlas/logger"
)

var rootCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Atlas - data exploration query engine",
	Long: `Atlas - classification-aware query resolution and data serving.

Atlas resolves incoming data requests against a registry of datasets,
slices and endpoints, infers classification levels for entity arguments
and serves the matching slice rows over HTTP.

Available commands:
  serve   - Start the atlas data server
  db      - Manage the atlas database
  config  - Inspect the resolved configuration
  version - Show version information

Examples:
  atlas serve                     # Start the server
  atlas db migrate                # Apply pending schema migrations
  atlas config show               # Print the resolved configuration`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger setup for commands that print to stdout directly
		if cmd.Name() == "show" || cmd.Name() == "version" {
			return nil
		}
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if err := logger.Initialize(jsonLogs); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit structured JSON logs instead of console output")
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: atlas.toml in the search path)")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	defer logger.Cleanup()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
