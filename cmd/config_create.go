package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Write an example configuration file.",
	Long: `Write an example configuration file to the active config location.

The template carries placeholder endpoints; at minimum lighthouse.cluster_id
must be filled in before the sync commands will run. An existing config file
is left untouched.`,
	Example: `
  # Write the example config to $HOME/.plansync.yaml
  plansync config create

  # Write it to an explicit location
  plansync --configFile ./plansync.yaml config create
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
		if err != nil {
			return err
		}

		created, err := ensureConfigFileWithTemplate(configPath)
		if err != nil {
			return err
		}
		if !created {
			fmt.Printf("Config file already exists at %s, nothing written.\n", configPath)
			return nil
		}

		fmt.Printf("Example config written to %s\n", configPath)
		fmt.Println("Fill in lighthouse.cluster_id before running \"plansync sync\".")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configCreateCmd)
}
