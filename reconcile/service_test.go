package reconcile

import (
	"context"
	"errors"
	"testing"

	"plansync/assignment"
	"plansync/erp"
	"plansync/internal/shift"
	"plansync/lighthouse"
)

type fakeSchedule struct {
	rows []erp.Row
	err  error
}

func (f fakeSchedule) FetchSchedule(ctx context.Context, date, shiftCode string) ([]erp.Row, error) {
	return f.rows, f.err
}

type fakeDevices struct {
	devices []lighthouse.Device
	err     error
}

func (f fakeDevices) ListDevices(ctx context.Context, clusterID string) ([]lighthouse.Device, error) {
	return f.devices, f.err
}

type fakeStore struct {
	locals []assignment.Local
	err    error
}

func (f fakeStore) ListERPAssignments() ([]assignment.Local, error) {
	return f.locals, f.err
}

func TestAnalyze_EndToEndClassification(t *testing.T) {
	service := &Service{
		Schedule: fakeSchedule{rows: []erp.Row{
			{
				WorkdayCode:    "2026-01-17",
				ShiftCode:      "D",
				RouteCardNbr:   "RC-100",
				ProcessID:      "20",
				OperatorCode:   "OP7",
				OperatorName:   "A. Kumar",
				ItemCode:       "P-550",
				QtyPlanned:     150,
				WorkCenterCode: "WC-01",
			},
			// rejected: no device for this work center
			{WorkdayCode: "2026-01-17", ShiftCode: "D", RouteCardNbr: "RC-300", WorkCenterCode: "WC-99"},
		}},
		Devices:   fakeDevices{devices: []lighthouse.Device{{ID: "dev-1", ForeignID: "WC-01"}}},
		Store:     fakeStore{},
		ClusterID: "cl-9",
	}

	analysis, err := service.Analyze(context.Background(), "2026-01-17", "D")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if analysis.Rows != 2 || analysis.Candidates != 1 {
		t.Fatalf("unexpected counts: %+v", analysis)
	}
	if len(analysis.Changes.Adds) != 1 || analysis.Changes.Adds[0].ID != "WC-01-P-550-RC-100" {
		t.Fatalf("unexpected changes: %+v", analysis.Changes)
	}
}

func TestAnalyze_InvalidDateFailsFast(t *testing.T) {
	service := &Service{Schedule: fakeSchedule{}, Devices: fakeDevices{}, Store: fakeStore{}}
	if _, err := service.Analyze(context.Background(), "2026-13-01", "D"); !errors.Is(err, shift.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestAnalyze_FetchFailureAbortsPass(t *testing.T) {
	fetchErr := &erp.FetchError{Op: "schedule fetch", Err: errors.New("boom")}
	service := &Service{
		Schedule: fakeSchedule{err: fetchErr},
		Devices:  fakeDevices{},
		Store:    fakeStore{},
	}

	_, err := service.Analyze(context.Background(), "2026-01-17", "D")
	var typed *erp.FetchError
	if !errors.As(err, &typed) {
		t.Fatalf("expected wrapped *erp.FetchError, got %v", err)
	}
}
