package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"plansync/config"
	"plansync/reconcile"
	"plansync/storage"
	"plansync/submitter"
)

var (
	syncDate      string
	syncShift     string
	syncDBPath    string
	syncStateFile string
	syncTimeout   time.Duration
	syncDryRun    bool
	syncYes       bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the ERP shift schedule and apply the selected changes to Lighthouse",
	Long: `Fetch the ERP schedule for one workday and shift, classify each row against
the local snapshot of Lighthouse planning items, and apply the selected
changes as a single batch mutation.

Classification buckets:
- add: ERP row with no matching local assignment
- update: matching assignment whose quantity, operator, or op number differs
- delete: ERP-origin local assignment the schedule no longer contains

Without --yes, an interactive picker pre-selects every change and lets you
deselect before applying. The whole batch is one remote call; if it fails,
nothing is applied and the sync can be retried.

Authentication uses ERP session cookies from the captured state JSON.`,
	Example: `
  # Sync today's day shift interactively
  plansync sync

  # Sync a specific date and shift
  plansync sync --date 2026-03-02 --shift E

  # Preview only, no writes
  plansync sync --dry-run

  # Apply all changes without the picker
  plansync sync --yes
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		date := resolveWorkday(syncDate, time.Now())
		shiftCode := resolveShift(syncShift, cfg.Sync.DefaultShift)

		stateFile, err := resolveSessionStatePath(syncStateFile)
		if err != nil {
			return err
		}
		schedule, err := buildScheduleClient(cfg, stateFile, "plansync-sync/1.0")
		if err != nil {
			return err
		}
		client, err := buildLighthouseClient(cfg)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(syncDBPath)
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

		analyzeCtx, cancelAnalyze := context.WithTimeout(context.Background(), syncTimeout)
		defer cancelAnalyze()
		analysis, err := svc.Analyze(analyzeCtx, date, shiftCode)
		if err != nil {
			return err
		}

		printAnalysisSummary(analysis)
		if analysis.Changes.Empty() {
			fmt.Println("Everything is in sync.")
			return nil
		}

		if syncDryRun {
			fmt.Println("Dry-run mode: no changes applied.")
			printChangeSet(analysis.Changes)
			return nil
		}

		selected, err := selectChanges(analysis.Changes, syncYes)
		if err != nil {
			return err
		}
		if selected.Empty() {
			fmt.Println("Nothing selected, no changes applied.")
			return nil
		}

		current, err := store.ListERPAssignments()
		if err != nil {
			return err
		}

		applyCtx, cancelApply := context.WithTimeout(context.Background(), syncTimeout)
		defer cancelApply()
		result, err := submitter.Execute(applyCtx, client, selected, current)
		if err != nil {
			return err
		}

		fmt.Printf("Applied: %d created, %d updated, %d deleted\n", result.Created, result.Updated, result.Deleted)
		if result.SkippedDeletes > 0 {
			fmt.Printf("Warning: %d delete(s) skipped: owning group could not be resolved from the snapshot\n", result.SkippedDeletes)
		}

		if cfg.Sync.PullAfterSync {
			pullCtx, cancelPull := context.WithTimeout(context.Background(), syncTimeout)
			defer cancelPull()
			rows, pullErr := pullSnapshot(pullCtx, client, store, cfg.Lighthouse.ClusterID)
			if pullErr != nil {
				return fmt.Errorf("batch applied but snapshot refresh failed: %w", pullErr)
			}
			fmt.Printf("Snapshot refreshed: %d planning items.\n", rows)
		} else {
			fmt.Println("Snapshot not refreshed; run \"plansync pull\" before the next sync.")
		}
		return nil
	},
}

// selectChanges runs the interactive picker unless the caller opted
// into applying everything. All changes start selected.
func selectChanges(set reconcile.ChangeSet, applyAll bool) (reconcile.ChangeSet, error) {
	if applyAll {
		return reconcile.SelectAll(set).Filter(set), nil
	}

	all := set.All()
	options := make([]huh.Option[string], 0, len(all))
	for _, change := range all {
		label := fmt.Sprintf("[%s] %s", change.Type, change.Title)
		if change.Diff != "" {
			label += " " + change.Diff
		} else if change.Subtitle != "" {
			label += " " + change.Subtitle
		}
		options = append(options, huh.NewOption(label, change.ID).Selected(true))
	}

	var picked []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Select changes to apply").
				Description("Space toggles, enter confirms. Deselected changes stay pending.").
				Options(options...).
				Value(&picked),
		),
	)
	if err := form.Run(); err != nil {
		return reconcile.ChangeSet{}, fmt.Errorf("change selection aborted: %w", err)
	}

	return reconcile.SelectionOf(picked...).Filter(set), nil
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncDate, "date", "", "Workday to sync, format YYYY-MM-DD (default: today)")
	syncCmd.Flags().StringVar(&syncShift, "shift", "", "Shift code: D|G|E (default: sync.default_shift from config)")
	syncCmd.Flags().StringVar(&syncDBPath, "db", "./plansync.db", "Path to local SQLite snapshot database")
	syncCmd.Flags().StringVar(&syncStateFile, "state-file", "", "Path to ERP session state JSON (default: $HOME/.plansync/erp-session-state.json)")
	syncCmd.Flags().DurationVar(&syncTimeout, "timeout", 60*time.Second, "Timeout per remote phase (analyze, apply, refresh)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Classify and print changes without applying")
	syncCmd.Flags().BoolVarP(&syncYes, "yes", "y", false, "Apply all changes without the interactive picker")
}
