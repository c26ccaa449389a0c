// Package importer turns raw ERP schedule rows into canonical
// assignment candidates. Rejection is a per-row outcome: bad rows are
// logged and skipped, the batch always runs to completion.
package importer

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"plansync/assignment"
	"plansync/erp"
	"plansync/lighthouse"
)

// Normalizer filters and maps one fetch's rows for a requested
// workday and shift against the cluster's device directory.
type Normalizer struct {
	date              string
	shiftCode         string
	deviceByForeignID map[string]lighthouse.Device
}

func NewNormalizer(date, shiftCode string, devices []lighthouse.Device) *Normalizer {
	byForeignID := make(map[string]lighthouse.Device, len(devices))
	for _, device := range devices {
		if device.ForeignID == "" {
			continue
		}
		byForeignID[device.ForeignID] = device
	}
	return &Normalizer{
		date:              strings.TrimSpace(date),
		shiftCode:         strings.TrimSpace(shiftCode),
		deviceByForeignID: byForeignID,
	}
}

// NormalizeAll maps every acceptable row, in input order.
func (n *Normalizer) NormalizeAll(rows []erp.Row) []assignment.Candidate {
	candidates := make([]assignment.Candidate, 0, len(rows))
	for i, row := range rows {
		candidate, ok := n.Normalize(i, row)
		if !ok {
			continue
		}
		candidates = append(candidates, *candidate)
	}
	return candidates
}

// Normalize applies the acceptance rules in order and returns the
// canonical candidate, or (nil, false) when the row is rejected.
func (n *Normalizer) Normalize(rowIndex int, row erp.Row) (*assignment.Candidate, bool) {
	if row.WorkdayCode != n.date {
		n.reject(rowIndex, row, "workday %q does not match requested date", row.WorkdayCode)
		return nil, false
	}

	if !n.shiftMatches(rowIndex, row) {
		return nil, false
	}

	workOrder := strings.TrimSpace(row.RouteCardNbr)
	if workOrder == "" {
		n.reject(rowIndex, row, "missing route card number")
		return nil, false
	}

	device, ok := n.deviceByForeignID[row.WorkCenterCode]
	if !ok {
		n.reject(rowIndex, row, "work center %q has no matching device", row.WorkCenterCode)
		return nil, false
	}

	return &assignment.Candidate{
		WorkOrder:       workOrder,
		ProcessID:       row.ProcessID,
		OperatorCode:    row.OperatorCode,
		OperatorName:    row.OperatorName,
		PartNumber:      row.ItemCode,
		PlannedQuantity: row.QtyPlanned,
		WorkCenterCode:  row.WorkCenterCode,
		DeviceID:        device.ID,
		ShiftCode:       n.shiftCode,
		WorkdayCode:     row.WorkdayCode,
	}, true
}

// shiftMatches enforces shift filtering. The General shift is lenient:
// the ERP tags those rows inconsistently, so a mismatched code is only
// a warning and the row stays in.
func (n *Normalizer) shiftMatches(rowIndex int, row erp.Row) bool {
	switch n.shiftCode {
	case assignment.ShiftDay, assignment.ShiftNight:
		if row.ShiftCode != n.shiftCode {
			n.reject(rowIndex, row, "shift %q does not match requested shift %q", row.ShiftCode, n.shiftCode)
			return false
		}
		return true
	case assignment.ShiftGeneral:
		if row.ShiftCode != assignment.ShiftGeneral {
			log.WithFields(log.Fields{
				"row":       rowIndex,
				"workOrder": row.RouteCardNbr,
				"shift":     row.ShiftCode,
			}).Warn("accepting general-shift row with mismatched shift code")
		}
		return true
	default:
		n.reject(rowIndex, row, "unknown requested shift %q", n.shiftCode)
		return false
	}
}

func (n *Normalizer) reject(rowIndex int, row erp.Row, format string, args ...any) {
	log.WithFields(log.Fields{
		"row":       rowIndex,
		"workOrder": row.RouteCardNbr,
		"workday":   row.WorkdayCode,
	}).Debugf("row rejected: "+format, args...)
}
