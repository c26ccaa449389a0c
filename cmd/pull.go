package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"plansync/config"
	"plansync/storage"
)

var (
	pullDBPath  string
	pullTimeout time.Duration
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Refresh the local snapshot from Lighthouse planning items",
	Long: `Fetch all planning items in the cluster's planning horizon and replace the
local SQLite snapshot with them.

The snapshot is what the sync classification runs against; pull after any
change made outside this tool so stale assignments are detected correctly.`,
	Example: `
  # Refresh the default snapshot database
  plansync pull

  # Refresh an explicit database file
  plansync pull --db ./plansync.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		client, err := buildLighthouseClient(cfg)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(pullDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(context.Background(), pullTimeout)
		defer cancel()
		rows, err := pullSnapshot(ctx, client, store, cfg.Lighthouse.ClusterID)
		if err != nil {
			return err
		}

		fmt.Printf("Snapshot refreshed: %d planning items in %s\n", rows, pullDBPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pullCmd)

	pullCmd.Flags().StringVar(&pullDBPath, "db", "./plansync.db", "Path to local SQLite snapshot database")
	pullCmd.Flags().DurationVar(&pullTimeout, "timeout", 60*time.Second, "Timeout for the Lighthouse fetch")
}
