package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"plansync/config"
	"plansync/output"
	"plansync/reconcile"
	"plansync/storage"
)

var (
	exportDate      string
	exportShift     string
	exportFormat    string
	exportOutput    string
	exportDBPath    string
	exportStateFile string
	exportTimeout   time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the classified changes for one shift to CSV/Excel",
	Long: `Run the same analysis as "sync --dry-run" and write the classified changes
to a report file instead of the terminal.

Output format can be selected explicitly via --format or inferred from the
--output extension.`,
	Example: `
  # Export today's day shift changes to CSV
  plansync export --output ./changes.csv

  # Export a specific date and shift to Excel
  plansync export --date 2026-03-02 --shift E --output ./changes.xlsx

  # Force Excel format independent of extension
  plansync export --format excel --output ./changes.out
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}
		writer, err := output.WriterForFormat(format)
		if err != nil {
			return err
		}

		date := resolveWorkday(exportDate, time.Now())
		shiftCode := resolveShift(exportShift, cfg.Sync.DefaultShift)

		stateFile, err := resolveSessionStatePath(exportStateFile)
		if err != nil {
			return err
		}
		schedule, err := buildScheduleClient(cfg, stateFile, "plansync-export/1.0")
		if err != nil {
			return err
		}
		client, err := buildLighthouseClient(cfg)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(exportDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		svc := &reconcile.Service{
			Schedule:  schedule,
			Devices:   client,
			Store:     store,
			ClusterID: cfg.Lighthouse.ClusterID,
		}

		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()
		analysis, err := svc.Analyze(ctx, date, shiftCode)
		if err != nil {
			return err
		}

		if err := writer.Write(exportOutput, analysis.Changes); err != nil {
			return err
		}

		fmt.Printf("Export completed. Changes: %d, Format: %s, File: %s\n", analysis.Changes.Len(), format, exportOutput)
		return nil
	},
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDate, "date", "", "Workday to analyze, format YYYY-MM-DD (default: today)")
	exportCmd.Flags().StringVar(&exportShift, "shift", "", "Shift code: D|G|E (default: sync.default_shift from config)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "./plansync.db", "Path to local SQLite snapshot database")
	exportCmd.Flags().StringVar(&exportStateFile, "state-file", "", "Path to ERP session state JSON (default: $HOME/.plansync/erp-session-state.json)")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 60*time.Second, "Timeout for the analysis phase")

	_ = exportCmd.MarkFlagRequired("output")
}
