package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"plansync/config"
)

var devicesTimeout time.Duration

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the cluster's devices and their work center mapping",
	Long: `List every device in the configured Lighthouse cluster.

ERP rows are matched to devices through the device's foreign identifier,
which must equal the ERP work center code. Devices without a foreign
identifier never receive synced assignments.`,
	Example: `
  # List devices of the configured cluster
  plansync devices
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

		ctx, cancel := context.WithTimeout(context.Background(), devicesTimeout)
		defer cancel()
		devices, err := client.ListDevices(ctx, cfg.Lighthouse.ClusterID)
		if err != nil {
			return err
		}

		if len(devices) == 0 {
			fmt.Println("No devices found in cluster", cfg.Lighthouse.ClusterID)
			return nil
		}

		fmt.Printf("%-28s %-24s %s\n", "DEVICE ID", "NAME", "WORK CENTER")
		for _, device := range devices {
			workCenter := device.ForeignID
			if workCenter == "" {
				workCenter = "(unmapped)"
			}
			fmt.Printf("%-28s %-24s %s\n", device.ID, device.DeviceName, workCenter)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)

	devicesCmd.Flags().DurationVar(&devicesTimeout, "timeout", 30*time.Second, "Timeout for the Lighthouse fetch")
}
