package reconcile

import (
	"context"
	"fmt"

	"plansync/assignment"
	"plansync/erp"
	"plansync/importer"
	"plansync/internal/shift"
	"plansync/lighthouse"
)

// AssignmentStore reads the locally tracked snapshot. Only ERP-origin
// records participate in classification; manual entries are invisible
// to the sync flow.
type AssignmentStore interface {
	ListERPAssignments() ([]assignment.Local, error)
}

// DeviceLister resolves the cluster's device directory.
type DeviceLister interface {
	ListDevices(ctx context.Context, clusterID string) ([]lighthouse.Device, error)
}

// Service performs one full analysis pass: fetch schedule, normalize,
// classify against the local snapshot.
type Service struct {
	Schedule  erp.ScheduleSource
	Devices   DeviceLister
	Store     AssignmentStore
	ClusterID string
}

// Analysis is the outcome of one pass. It is transient and recomputed
// for every sync attempt.
type Analysis struct {
	Date       string
	ShiftCode  string
	Rows       int
	Candidates int
	Existing   int
	Changes    ChangeSet
}

// Analyze runs the fetch/normalize/classify pipeline. The ERP fetch
// and the local snapshot read are strictly sequential so the match
// engine sees a coherent snapshot relative to the fetch. A failed
// fetch aborts the pass; no partial analysis is produced.
func (s *Service) Analyze(ctx context.Context, date, shiftCode string) (*Analysis, error) {
	if _, _, err := shift.Range(date, shiftCode); err != nil {
		return nil, err
	}

	devices, err := s.Devices.ListDevices(ctx, s.ClusterID)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	rows, err := s.Schedule.FetchSchedule(ctx, date, shiftCode)
	if err != nil {
		return nil, fmt.Errorf("fetch erp schedule: %w", err)
	}

	existing, err := s.Store.ListERPAssignments()
	if err != nil {
		return nil, fmt.Errorf("read local assignments: %w", err)
	}

	candidates := importer.NewNormalizer(date, shiftCode, devices).NormalizeAll(rows)
	changes, err := ComputeChanges(candidates, existing)
	if err != nil {
		return nil, err
	}

	return &Analysis{
		Date:       date,
		ShiftCode:  shiftCode,
		Rows:       len(rows),
		Candidates: len(candidates),
		Existing:   len(existing),
		Changes:    changes,
	}, nil
}
