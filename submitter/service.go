// Package submitter translates a selected change set into the minimal
// remote mutation batch and applies it in one call.
package submitter

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"plansync/assignment"
	"plansync/lighthouse"
	"plansync/reconcile"
)

// BatchApplier is the single mutation entry point of the remote store.
type BatchApplier interface {
	ApplyBatch(ctx context.Context, body lighthouse.BatchRequest) error
}

// Result reports what the applied batch contained. Counts are per
// item, not per remote group.
type Result struct {
	Created        int
	Updated        int
	Deleted        int
	SkippedDeletes int
}

func (r Result) Empty() bool {
	return r.Created == 0 && r.Updated == 0 && r.Deleted == 0
}

// Execute builds and submits the combined batch for the selected
// changes. The whole batch is one remote call; on failure nothing is
// considered applied and the caller may retry with the same selection.
// After a successful call the caller must refresh its local snapshot.
func Execute(ctx context.Context, client BatchApplier, selected reconcile.ChangeSet, current []assignment.Local) (*Result, error) {
	request, result := BuildBatch(selected, current)
	if request.Empty() {
		return &result, nil
	}
	if err := client.ApplyBatch(ctx, request); err != nil {
		return nil, fmt.Errorf("apply sync batch: %w", err)
	}
	return &result, nil
}

type addGroupKey struct {
	deviceID     string
	segmentStart string
	segmentEnd   string
}

// BuildBatch folds the three buckets into one combined request.
// Additions are grouped by device and segment so one shift on one
// device yields a single remote group; deletions are regrouped by
// their owning remote group and dropped when no group can be resolved.
func BuildBatch(selected reconcile.ChangeSet, current []assignment.Local) (lighthouse.BatchRequest, Result) {
	var request lighthouse.BatchRequest
	var result Result

	request, result = appendAdds(request, result, selected.Adds, current)
	request, result = appendUpdates(request, result, selected.Updates)
	request, result = appendDeletes(request, result, selected.Deletes, current)

	return request, result
}

func appendAdds(request lighthouse.BatchRequest, result Result, adds []reconcile.Change, current []assignment.Local) (lighthouse.BatchRequest, Result) {
	itemsByKey := make(map[addGroupKey][]lighthouse.ItemCreate)
	keys := make([]addGroupKey, 0, len(adds))
	metaByKey := make(map[addGroupKey]lighthouse.ItemMetadata)

	for _, change := range adds {
		if change.Add == nil {
			continue
		}
		key := addGroupKey{
			deviceID:     change.Add.DeviceID,
			segmentStart: change.Add.SegmentStart,
			segmentEnd:   change.Add.SegmentEnd,
		}
		if _, exists := itemsByKey[key]; !exists {
			keys = append(keys, key)
			metaByKey[key] = change.Add.Metadata
		}
		itemsByKey[key] = append(itemsByKey[key], lighthouse.ItemCreate{
			SegmentStart: change.Add.SegmentStart,
			SegmentEnd:   change.Add.SegmentEnd,
			Metadata:     change.Add.Metadata,
		})
		result.Created++
	}

	for _, key := range keys {
		items := itemsByKey[key]
		meta := metaByKey[key]

		if groupID, ok := existingGroupFor(current, key.deviceID, meta.WorkdayCode, meta.ShiftCode); ok {
			request.Update = append(request.Update, lighthouse.GroupUpdate{
				GroupID:  groupID,
				DeviceID: key.deviceID,
				Items:    lighthouse.GroupItemOps{Create: items},
			})
			continue
		}

		request.Create = append(request.Create, lighthouse.GroupCreate{
			DeviceID:     key.deviceID,
			Title:        fmt.Sprintf("PLANNED_OUTPUT-%s", meta.WorkdayCode),
			SegmentStart: key.segmentStart,
			SegmentEnd:   key.segmentEnd,
			Items:        items,
		})
	}

	return request, result
}

// existingGroupFor finds a local assignment already holding a remote
// group for this device, workday and shift. Routing new items into
// that group avoids duplicate remote groups for the same shift.
func existingGroupFor(current []assignment.Local, deviceID, date, shiftCode string) (string, bool) {
	shiftName := assignment.ShiftDisplayName(shiftCode)
	for _, local := range current {
		if local.DeviceID != deviceID || local.GroupID == "" {
			continue
		}
		if local.Date == date && local.Shift == shiftName {
			return local.GroupID, true
		}
	}
	return "", false
}

func appendUpdates(request lighthouse.BatchRequest, result Result, updates []reconcile.Change) (lighthouse.BatchRequest, Result) {
	for _, change := range updates {
		if change.Update == nil {
			continue
		}
		request.Update = append(request.Update, lighthouse.GroupUpdate{
			GroupID:  change.Update.GroupID,
			DeviceID: change.Update.DeviceID,
			Items:    lighthouse.GroupItemOps{Update: change.Update.Items},
		})
		result.Updated += len(change.Update.Items)
	}
	return request, result
}

func appendDeletes(request lighthouse.BatchRequest, result Result, deletes []reconcile.Change, current []assignment.Local) (lighthouse.BatchRequest, Result) {
	groupByItemID := make(map[string]assignment.Local, len(current))
	for _, local := range current {
		if local.ItemID == "" {
			continue
		}
		groupByItemID[local.ItemID] = local
	}

	idsByGroup := make(map[string][]string)
	groupOrder := make([]string, 0, len(deletes))
	deviceByGroup := make(map[string]string)

	for _, change := range deletes {
		if change.Delete == nil {
			continue
		}
		owner, ok := groupByItemID[change.Delete.ItemID]
		if !ok || owner.GroupID == "" {
			// Without a group context the item cannot be deleted;
			// drop it rather than failing the whole batch.
			log.WithField("itemId", change.Delete.ItemID).Warn("skipping delete with unresolvable remote group")
			result.SkippedDeletes++
			continue
		}
		if _, exists := idsByGroup[owner.GroupID]; !exists {
			groupOrder = append(groupOrder, owner.GroupID)
			deviceByGroup[owner.GroupID] = owner.DeviceID
		}
		idsByGroup[owner.GroupID] = append(idsByGroup[owner.GroupID], change.Delete.ItemID)
		result.Deleted++
	}

	for _, groupID := range groupOrder {
		request.Update = append(request.Update, lighthouse.GroupUpdate{
			GroupID:  groupID,
			DeviceID: deviceByGroup[groupID],
			Items:    lighthouse.GroupItemOps{Delete: idsByGroup[groupID]},
		})
	}

	return request, result
}
