package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"plansync/assignment"
	"plansync/config"
	"plansync/erp"
	"plansync/lighthouse"
	"plansync/reconcile"
	"plansync/storage"
)

// resolveSessionStatePath returns the flag value if set, otherwise the
// default location under the user's home directory.
func resolveSessionStatePath(flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue, nil
	}
	return erp.DefaultSessionStatePath()
}

// buildScheduleClient constructs the ERP client with session cookies
// taken from the captured state file.
func buildScheduleClient(cfg *config.Config, stateFile string, userAgent string) (*erp.HTTPClient, error) {
	parsed, err := url.Parse(cfg.ERP.URL)
	if err != nil {
		return nil, fmt.Errorf("parse erp url: %w", err)
	}

	cookieHeader, err := erp.SessionCookieHeaderFromStateFile(stateFile, parsed.Hostname())
	if err != nil {
		return nil, fmt.Errorf("extract session cookies: %w", err)
	}

	return erp.NewClient(erp.ClientConfig{
		BaseURL:        cfg.ERP.URL,
		SessionCookies: cookieHeader,
		UserAgent:      userAgent,
		Timeout:        cfg.ERP.Timeout(),
	})
}

func buildLighthouseClient(cfg *config.Config) (*lighthouse.HTTPClient, error) {
	return lighthouse.NewClient(lighthouse.ClientConfig{
		BaseURL: cfg.Lighthouse.URL,
		AppID:   cfg.Lighthouse.AppID,
		APIKey:  cfg.Lighthouse.APIKey,
	})
}

// pullSnapshot replaces the local snapshot with the cluster's current
// planning horizon.
func pullSnapshot(ctx context.Context, client lighthouse.Client, store *storage.SQLiteStore, clusterID string) (int, error) {
	from, to := lighthouse.PlanningHorizon(time.Now())
	items, err := client.ListPlanningItems(ctx, clusterID, from, to)
	if err != nil {
		return 0, fmt.Errorf("list planning items: %w", err)
	}

	records := make([]assignment.Local, 0, len(items))
	for _, item := range items {
		records = append(records, assignment.FromPlanningItem(item))
	}
	return store.ReplaceSnapshot(records)
}

// resolveWorkday returns the flag value if set, otherwise today.
func resolveWorkday(flagValue string, now time.Time) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	return now.Format("2006-01-02")
}

// resolveShift returns the flag value if set, then the configured
// default, then the day shift.
func resolveShift(flagValue, configured string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if strings.TrimSpace(configured) != "" {
		return configured
	}
	return assignment.ShiftDay
}

func printAnalysisSummary(analysis *reconcile.Analysis) {
	fmt.Printf("Workday %s, shift %s (%s)\n", analysis.Date, analysis.ShiftCode, assignment.ShiftDisplayName(analysis.ShiftCode))
	fmt.Printf("ERP rows: %d, accepted: %d, local records: %d\n", analysis.Rows, analysis.Candidates, analysis.Existing)
	fmt.Printf("Changes: %d add, %d update, %d delete\n",
		len(analysis.Changes.Adds), len(analysis.Changes.Updates), len(analysis.Changes.Deletes))
}

func printChangeSet(set reconcile.ChangeSet) {
	for _, change := range set.All() {
		line := fmt.Sprintf("  [%s] %s", change.Type, change.Title)
		if change.Subtitle != "" {
			line += " - " + change.Subtitle
		}
		if change.Diff != "" {
			line += " (" + change.Diff + ")"
		}
		fmt.Println(line)
	}
}
