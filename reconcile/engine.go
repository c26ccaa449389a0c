package reconcile

import (
	"fmt"
	"strconv"

	"plansync/assignment"
	"plansync/internal/shift"
	"plansync/lighthouse"
)

type ChangeType string

const (
	ChangeAdd    ChangeType = "ADD"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// unknownItemID stands in for a missing remote item id in the
// processed set. Multiple records without an item id collapse onto the
// same sentinel, which can mask a deletion; this mirrors the behavior
// the planners rely on today, so it stays.
const unknownItemID = "unknown"

// AddPayload provisions a new remote event item for a device and
// shift segment.
type AddPayload struct {
	DeviceID     string
	SegmentStart string
	SegmentEnd   string
	Metadata     lighthouse.ItemMetadata
}

// UpdatePayload rewrites an existing remote item in its owning group.
type UpdatePayload struct {
	GroupID  string
	DeviceID string
	Items    []lighthouse.ItemUpdate
}

// DeletePayload removes a remote item; the owning group is resolved at
// execution time from the local snapshot.
type DeletePayload struct {
	DeviceID string
	ItemID   string
}

// Change is one proposed mutation, pending operator selection. Exactly
// one payload field is set, matching Type.
type Change struct {
	ID       string
	Type     ChangeType
	Title    string
	Subtitle string
	Diff     string

	Add    *AddPayload
	Update *UpdatePayload
	Delete *DeletePayload
}

// ChangeSet holds the three disjoint classification buckets in
// insertion order.
type ChangeSet struct {
	Adds    []Change
	Updates []Change
	Deletes []Change
}

func (s ChangeSet) Empty() bool {
	return s.Len() == 0
}

func (s ChangeSet) Len() int {
	return len(s.Adds) + len(s.Updates) + len(s.Deletes)
}

// All returns every change, adds first, for display and selection.
func (s ChangeSet) All() []Change {
	out := make([]Change, 0, s.Len())
	out = append(out, s.Adds...)
	out = append(out, s.Updates...)
	out = append(out, s.Deletes...)
	return out
}

// ComputeChanges classifies every candidate against the ERP-origin
// local snapshot. Each candidate lands in at most one bucket; local
// records with a remote item id that no candidate claimed become
// deletion candidates. The function holds no state between calls.
func ComputeChanges(candidates []assignment.Candidate, existing []assignment.Local) (ChangeSet, error) {
	byKey := make(map[string]assignment.Local, len(existing))
	for _, local := range existing {
		if _, ok := byKey[local.IdentityKey()]; ok {
			continue
		}
		byKey[local.IdentityKey()] = local
	}

	processed := make(map[string]struct{}, len(existing))
	var changes ChangeSet

	for _, candidate := range candidates {
		key := candidate.IdentityKey()
		match, ok := byKey[key]
		if !ok {
			add, err := buildAdd(candidate)
			if err != nil {
				return ChangeSet{}, err
			}
			changes.Adds = append(changes.Adds, add)
			continue
		}

		processed[itemKeyOf(match)] = struct{}{}

		hasChanged := candidate.PlannedQuantity != match.Batch ||
			candidate.OperatorCode != match.Code ||
			!match.HasOpNumber(candidate.ProcessID)
		if !hasChanged {
			continue
		}
		if match.GroupID == "" || match.ItemID == "" {
			// A partially provisioned record has nothing safe to
			// address remotely; the change is dropped.
			continue
		}

		update, err := buildUpdate(candidate, match)
		if err != nil {
			return ChangeSet{}, err
		}
		changes.Updates = append(changes.Updates, update)
	}

	for _, local := range existing {
		if _, done := processed[itemKeyOf(local)]; done {
			continue
		}
		if local.ItemID == "" {
			continue
		}
		changes.Deletes = append(changes.Deletes, buildDelete(local))
	}

	return changes, nil
}

func itemKeyOf(local assignment.Local) string {
	if local.ItemID == "" {
		return unknownItemID
	}
	return local.ItemID
}

func buildAdd(candidate assignment.Candidate) (Change, error) {
	start, end, err := shift.Range(candidate.WorkdayCode, candidate.ShiftCode)
	if err != nil {
		return Change{}, fmt.Errorf("resolve shift range for %s: %w", candidate.IdentityKey(), err)
	}

	return Change{
		ID:       candidate.IdentityKey(),
		Type:     ChangeAdd,
		Title:    fmt.Sprintf("%s · %s", candidate.WorkOrder, candidate.PartNumber),
		Subtitle: fmt.Sprintf("%s on %s, qty %s", candidate.OperatorName, candidate.WorkCenterCode, formatQty(candidate.PlannedQuantity)),
		Add: &AddPayload{
			DeviceID:     candidate.DeviceID,
			SegmentStart: shift.FormatISO(start),
			SegmentEnd:   shift.FormatISO(end),
			Metadata:     metadataFor(candidate),
		},
	}, nil
}

func buildUpdate(candidate assignment.Candidate, match assignment.Local) (Change, error) {
	start, end, err := shift.Range(candidate.WorkdayCode, candidate.ShiftCode)
	if err != nil {
		return Change{}, fmt.Errorf("resolve shift range for %s: %w", candidate.IdentityKey(), err)
	}

	return Change{
		ID:       candidate.IdentityKey(),
		Type:     ChangeUpdate,
		Title:    fmt.Sprintf("%s · %s", candidate.WorkOrder, candidate.PartNumber),
		Subtitle: fmt.Sprintf("%s on %s", candidate.OperatorName, candidate.WorkCenterCode),
		Diff:     fmt.Sprintf("Qty: %s → %s", formatQty(match.Batch), formatQty(candidate.PlannedQuantity)),
		Update: &UpdatePayload{
			GroupID:  match.GroupID,
			DeviceID: match.DeviceID,
			Items: []lighthouse.ItemUpdate{{
				ID:           match.ItemID,
				SegmentStart: shift.FormatISO(start),
				SegmentEnd:   shift.FormatISO(end),
				Metadata:     metadataFor(candidate),
			}},
		},
	}, nil
}

func buildDelete(local assignment.Local) Change {
	return Change{
		ID:       itemKeyOf(local),
		Type:     ChangeDelete,
		Title:    fmt.Sprintf("%s · %s", local.WorkOrder, local.PartNumber),
		Subtitle: fmt.Sprintf("%s on %s (%s %s)", local.OperatorName, local.WorkCenterCode, local.Date, local.Shift),
		Delete: &DeletePayload{
			DeviceID: local.DeviceID,
			ItemID:   local.ItemID,
		},
	}
}

func metadataFor(candidate assignment.Candidate) lighthouse.ItemMetadata {
	return lighthouse.ItemMetadata{
		AnnotationType:   "PLANNING",
		ImportedFrom:     "ERP",
		UniqueIdentifier: candidate.IdentityKey(),
		WorkOrder:        candidate.WorkOrder,
		ProcessID:        candidate.ProcessID,
		OperatorCode:     candidate.OperatorCode,
		OperatorName:     candidate.OperatorName,
		PartNumber:       candidate.PartNumber,
		PlannedQuantity:  candidate.PlannedQuantity,
		WorkCenterCode:   candidate.WorkCenterCode,
		ShiftCode:        candidate.ShiftCode,
		WorkdayCode:      candidate.WorkdayCode,
	}
}

func formatQty(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
