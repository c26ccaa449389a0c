package assignment

import "plansync/lighthouse"

// FromPlanningItem maps a remote planning event item into the local
// snapshot representation.
func FromPlanningItem(item lighthouse.PlanningItem) Local {
	meta := item.Metadata
	opNumbers := []string{}
	if meta.ProcessID != "" {
		opNumbers = []string{meta.ProcessID}
	}
	return Local{
		WorkOrder:      meta.WorkOrder,
		PartNumber:     meta.PartNumber,
		WorkCenterCode: meta.WorkCenterCode,
		OperatorName:   meta.OperatorName,
		Code:           meta.OperatorCode,
		Batch:          meta.PlannedQuantity,
		OpNumbers:      opNumbers,
		Date:           meta.WorkdayCode,
		Shift:          ShiftDisplayName(meta.ShiftCode),
		ImportedFrom:   meta.ImportedFrom,
		GroupID:        item.GroupID,
		ItemID:         item.ItemID,
		DeviceID:       item.DeviceID,
	}
}
