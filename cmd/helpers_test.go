package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"plansync/lighthouse"
	"plansync/reconcile"
	"plansync/storage"
)

type fakePlanningClient struct {
	items []lighthouse.PlanningItem

	gotFrom time.Time
	gotTo   time.Time
}

func (f *fakePlanningClient) ListDevices(ctx context.Context, clusterID string) ([]lighthouse.Device, error) {
	return nil, nil
}

func (f *fakePlanningClient) ListPlanningItems(ctx context.Context, clusterID string, from, to time.Time) ([]lighthouse.PlanningItem, error) {
	f.gotFrom = from
	f.gotTo = to
	return f.items, nil
}

func (f *fakePlanningClient) ApplyBatch(ctx context.Context, body lighthouse.BatchRequest) error {
	return nil
}

func TestPullSnapshotReplacesLocalRecords(t *testing.T) {
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "plansync.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	client := &fakePlanningClient{
		items: []lighthouse.PlanningItem{
			{
				GroupID:  "g1",
				ItemID:   "i1",
				DeviceID: "dev-1",
				Metadata: lighthouse.ItemMetadata{
					AnnotationType:   "PLANNING",
					ImportedFrom:     "ERP",
					WorkOrder:        "WO-1",
					PartNumber:       "P-550",
					WorkCenterCode:   "WC-01",
					PlannedQuantity:  100,
					WorkdayCode:      "2026-03-02",
					ShiftCode:        "D",
					UniqueIdentifier: "WC-01-P-550-WO-1",
				},
			},
		},
	}

	rows, err := pullSnapshot(context.Background(), client, store, "c1")
	if err != nil {
		t.Fatalf("pull snapshot: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected 1 row, got %d", rows)
	}

	if client.gotTo.Sub(client.gotFrom) != 22*24*time.Hour {
		t.Fatalf("unexpected horizon: %s .. %s", client.gotFrom, client.gotTo)
	}

	records, err := store.ListERPAssignments()
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(records) != 1 || records[0].ItemID != "i1" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestResolveWorkday(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if got := resolveWorkday("", now); got != "2026-03-02" {
		t.Fatalf("expected today, got %q", got)
	}
	if got := resolveWorkday("2026-01-17", now); got != "2026-01-17" {
		t.Fatalf("expected explicit date, got %q", got)
	}
}

func TestResolveShift(t *testing.T) {
	if got := resolveShift("E", "G"); got != "E" {
		t.Fatalf("expected flag value, got %q", got)
	}
	if got := resolveShift("", "G"); got != "G" {
		t.Fatalf("expected configured default, got %q", got)
	}
	if got := resolveShift("", ""); got != "D" {
		t.Fatalf("expected day shift fallback, got %q", got)
	}
}

func TestDetectExportFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "./changes.csv", want: "csv"},
		{path: "./changes.xlsx", want: "excel"},
		{path: "./changes.out", want: "csv"},
	}
	for _, tt := range tests {
		if got := detectExportFormat(tt.path); got != tt.want {
			t.Fatalf("detectExportFormat(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestSelectChangesApplyAllKeepsEveryBucket(t *testing.T) {
	set := reconcile.ChangeSet{
		Adds:    []reconcile.Change{{ID: "a1", Type: reconcile.ChangeAdd}},
		Updates: []reconcile.Change{{ID: "u1", Type: reconcile.ChangeUpdate}},
		Deletes: []reconcile.Change{{ID: "d1", Type: reconcile.ChangeDelete}},
	}

	selected, err := selectChanges(set, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selected.Len() != 3 {
		t.Fatalf("expected all changes selected, got %d", selected.Len())
	}
}
