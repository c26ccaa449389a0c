package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage plansync configuration file values.",
	Long: `Create, edit, and display the plansync configuration file.

The configuration stores the service endpoints and sync behavior:
- erp.url / erp.timeout_seconds
- lighthouse.url / lighthouse.cluster_id / lighthouse.app_id / lighthouse.api_key
- sync.default_shift / sync.pull_after_sync`,
	Example: `
  # Create default config in $HOME/.plansync.yaml
  plansync config create

  # Show active config and source file
  plansync config show

  # Open active config in editor (creates example if missing)
  plansync config edit
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
