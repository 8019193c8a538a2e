package commands

import (
	"github.com/spf13/cobra"

	"github.com/growthlab/atlas/config"
)

// loadConfig resolves configuration for a command, honoring the global
// --config flag when set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}
