package storage

import (
	"path/filepath"
	"reflect"
	"testing"

	"plansync/assignment"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "plansync.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestReplaceSnapshot_RoundTrip(t *testing.T) {
	store := openTestStore(t)

	records := []assignment.Local{
		{
			WorkOrder:      "RC-100",
			PartNumber:     "P-550",
			WorkCenterCode: "WC-01",
			OperatorName:   "A. Kumar",
			Code:           "OP7",
			Batch:          150,
			OpNumbers:      []string{"20", "30"},
			Date:           "2026-01-17",
			Shift:          "Day",
			ImportedFrom:   "ERP",
			GroupID:        "g1",
			ItemID:         "i1",
			DeviceID:       "dev-1",
		},
		{
			WorkOrder:      "RC-200",
			PartNumber:     "P-600",
			WorkCenterCode: "WC-04",
			Date:           "2026-01-17",
			Shift:          "Day",
			ImportedFrom:   "MANUAL",
			DeviceID:       "dev-2",
		},
	}

	inserted, err := store.ReplaceSnapshot(records)
	if err != nil {
		t.Fatalf("replace snapshot: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("expected 2 inserted rows, got %d", inserted)
	}

	all, err := store.ListAssignments()
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(all))
	}
	if !reflect.DeepEqual(all[0].OpNumbers, []string{"20", "30"}) {
		t.Fatalf("op numbers round trip failed: %+v", all[0].OpNumbers)
	}
	if all[0].Batch != 150 || all[0].GroupID != "g1" || all[0].ItemID != "i1" {
		t.Fatalf("unexpected first row: %+v", all[0])
	}
}

func TestListERPAssignments_FiltersOrigin(t *testing.T) {
	store := openTestStore(t)

	_, err := store.ReplaceSnapshot([]assignment.Local{
		{WorkOrder: "RC-1", PartNumber: "P-1", WorkCenterCode: "WC-1", Date: "2026-01-17", Shift: "Day", ImportedFrom: "ERP", ItemID: "i1"},
		{WorkOrder: "RC-2", PartNumber: "P-2", WorkCenterCode: "WC-2", Date: "2026-01-17", Shift: "Day", ImportedFrom: "MANUAL"},
	})
	if err != nil {
		t.Fatalf("replace snapshot: %v", err)
	}

	erpOnly, err := store.ListERPAssignments()
	if err != nil {
		t.Fatalf("list erp assignments: %v", err)
	}
	if len(erpOnly) != 1 || erpOnly[0].WorkOrder != "RC-1" {
		t.Fatalf("unexpected filtered rows: %+v", erpOnly)
	}
}

func TestReplaceSnapshot_DropsPreviousSnapshot(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.ReplaceSnapshot([]assignment.Local{
		{WorkOrder: "RC-1", PartNumber: "P-1", WorkCenterCode: "WC-1", Date: "2026-01-17", Shift: "Day"},
	}); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	if _, err := store.ReplaceSnapshot([]assignment.Local{
		{WorkOrder: "RC-9", PartNumber: "P-9", WorkCenterCode: "WC-9", Date: "2026-01-18", Shift: "Night"},
	}); err != nil {
		t.Fatalf("second snapshot: %v", err)
	}

	all, err := store.ListAssignments()
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(all) != 1 || all[0].WorkOrder != "RC-9" {
		t.Fatalf("expected snapshot replacement, got %+v", all)
	}
}
