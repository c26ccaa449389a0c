package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"plansync/assignment"
	"plansync/config"
	"plansync/erp"
	"plansync/lighthouse"
	"plansync/reconcile"
)

type fakeLighthouse struct {
	devices  []lighthouse.Device
	planning []lighthouse.PlanningItem

	batches []lighthouse.BatchRequest
}

func (f *fakeLighthouse) ListDevices(ctx context.Context, clusterID string) ([]lighthouse.Device, error) {
	return f.devices, nil
}

func (f *fakeLighthouse) ListPlanningItems(ctx context.Context, clusterID string, from, to time.Time) ([]lighthouse.PlanningItem, error) {
	return f.planning, nil
}

func (f *fakeLighthouse) ApplyBatch(ctx context.Context, body lighthouse.BatchRequest) error {
	f.batches = append(f.batches, body)
	return nil
}

type fakeSchedule struct {
	rows []erp.Row
}

func (f fakeSchedule) FetchSchedule(ctx context.Context, date, shiftCode string) ([]erp.Row, error) {
	return f.rows, nil
}

type memoryStore struct {
	records  []assignment.Local
	replaced int
}

func (m *memoryStore) ListERPAssignments() ([]assignment.Local, error) {
	return m.records, nil
}

func (m *memoryStore) ReplaceSnapshot(records []assignment.Local) (int, error) {
	m.records = records
	m.replaced++
	return len(records), nil
}

func testServer(client *fakeLighthouse, store *memoryStore) http.Handler {
	svc := &reconcile.Service{
		Schedule:  fakeSchedule{rows: testRows()},
		Devices:   client,
		Store:     store,
		ClusterID: "c1",
	}
	cfg := config.Config{}
	cfg.Lighthouse.ClusterID = "c1"
	cfg.Sync.DefaultShift = "D"
	return NewServer(svc, client, store, cfg)
}

func testRows() []erp.Row {
	return []erp.Row{
		{
			WorkdayCode:    "2026-03-02",
			ShiftCode:      "D",
			RouteCardNbr:   "WO-1",
			ProcessID:      "100",
			OperatorCode:   "OP-7",
			OperatorName:   "R. Iyer",
			ItemCode:       "P-550",
			QtyPlanned:     150,
			WorkCenterCode: "WC-01",
		},
	}
}

func TestServer_ReviewPageRendersDefaults(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(testServer(&fakeLighthouse{}, &memoryStore{}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("request review page: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	text := string(body)
	if !strings.Contains(text, "Shift plan review") {
		t.Fatalf("review page missing heading: %s", text)
	}
	if !strings.Contains(text, `value="D" selected`) {
		t.Fatalf("review page missing default shift selection: %s", text)
	}
}

func TestServer_APIChangesReturnsClassifiedBuckets(t *testing.T) {
	t.Parallel()

	client := &fakeLighthouse{
		devices: []lighthouse.Device{{ID: "dev-1", ForeignID: "WC-01"}},
	}
	ts := httptest.NewServer(testServer(client, &memoryStore{}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/changes?date=2026-03-02&shift=D")
	if err != nil {
		t.Fatalf("request changes: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var got changesResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Rows != 1 || got.Candidates != 1 {
		t.Fatalf("unexpected counts: rows=%d candidates=%d", got.Rows, got.Candidates)
	}
	if len(got.Adds) != 1 || len(got.Updates) != 0 || len(got.Deletes) != 0 {
		t.Fatalf("unexpected buckets: %+v", got)
	}
	if got.Adds[0].ID != "WC-01-P-550-WO-1" {
		t.Fatalf("unexpected change id: %s", got.Adds[0].ID)
	}
}

func TestServer_APIChangesRejectsMalformedDate(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(testServer(&fakeLighthouse{}, &memoryStore{}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/changes?date=03-02-2026&shift=D")
	if err != nil {
		t.Fatalf("request changes: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestServer_APIApplySubmitsSelectionAndRefreshesSnapshot(t *testing.T) {
	t.Parallel()

	client := &fakeLighthouse{
		devices: []lighthouse.Device{{ID: "dev-1", ForeignID: "WC-01"}},
	}
	store := &memoryStore{}
	ts := httptest.NewServer(testServer(client, store))
	defer ts.Close()

	body, _ := json.Marshal(applyRequest{
		Date:  "2026-03-02",
		Shift: "D",
		IDs:   []string{"WC-01-P-550-WO-1"},
	})
	resp, err := http.Post(ts.URL+"/api/apply", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request apply: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var got applyResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Created != 1 {
		t.Fatalf("expected 1 created, got %+v", got)
	}
	if len(client.batches) != 1 {
		t.Fatalf("expected exactly one batch call, got %d", len(client.batches))
	}
	if store.replaced != 1 {
		t.Fatalf("expected snapshot refresh after apply, got %d", store.replaced)
	}
}

func TestServer_APIApplyRejectsEmptySelection(t *testing.T) {
	t.Parallel()

	client := &fakeLighthouse{}
	ts := httptest.NewServer(testServer(client, &memoryStore{}))
	defer ts.Close()

	body, _ := json.Marshal(applyRequest{Date: "2026-03-02", Shift: "D"})
	resp, err := http.Post(ts.URL+"/api/apply", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("request apply: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if len(client.batches) != 0 {
		t.Fatalf("expected no batch call, got %d", len(client.batches))
	}
}
