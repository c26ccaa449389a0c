/*
Copyright © 2026

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"plansync/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "plansync",
	Short: "Reconcile ERP shift schedules against Lighthouse planned-output assignments.",
	Long: `
**********************************************
*               PLANSYNC                     *
**********************************************

This CLI pulls shift schedules from the plant ERP, compares them against the
planned-output assignments tracked in a Lighthouse cluster, and applies the
selected changes as a single batch mutation.

A local SQLite snapshot of the cluster's planning items is kept so the match
engine can classify ERP rows into additions, updates, and stale deletions.
`,
	Example: `
  # Create configuration file
  plansync config create

  # Refresh the local snapshot from Lighthouse
  plansync pull

  # Preview changes for today's day shift without writing
  plansync sync --dry-run

  # Sync a specific date and shift, selecting changes interactively
  plansync sync --date 2026-03-02 --shift E

  # Apply everything without the interactive picker
  plansync sync --yes

  # Export the classified changes for review
  plansync export --date 2026-03-02 --shift D --output ./changes.csv

  # Start the local review UI
  plansync serve
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.plansync.yaml, then ./.plansync.yaml)")

	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if !requiresConfig(cmd) {
			return nil
		}

		_, err := config.LoadAndValidate()
		return err
	}
}

func requiresConfig(cmd *cobra.Command) bool {
	return cmd != nil && cmd.Name() == "sync"
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".plansync")
	}

	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found. Create one first with: plansync config create")
	}
}
