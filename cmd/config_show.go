package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"plansync/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  plansync config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
			fmt.Println("Configuration:")
			fmt.Printf("erp.url: %s\n", cfg.ERP.URL)
			fmt.Printf("erp.timeout_seconds: %d\n", cfg.ERP.TimeoutSeconds)
			fmt.Printf("lighthouse.url: %s\n", cfg.Lighthouse.URL)
			fmt.Printf("lighthouse.cluster_id: %s\n", cfg.Lighthouse.ClusterID)
			fmt.Printf("lighthouse.app_id: %s\n", cfg.Lighthouse.AppID)
			apiKey := "(not set)"
			if cfg.Lighthouse.APIKey != "" {
				apiKey = "(set)"
			}
			fmt.Printf("lighthouse.api_key: %s\n", apiKey)
			fmt.Printf("sync.default_shift: %s\n", cfg.Sync.DefaultShift)
			fmt.Printf("sync.pull_after_sync: %t\n", cfg.Sync.PullAfterSync)
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
