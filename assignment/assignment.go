package assignment

import "fmt"

// Shift codes as reported by the ERP schedule.
const (
	ShiftDay     = "D"
	ShiftGeneral = "G"
	ShiftNight   = "E"
)

// ShiftDisplayName returns the operator-facing shift name for a code.
// Unknown codes fall back to the code itself.
func ShiftDisplayName(code string) string {
	switch code {
	case ShiftDay:
		return "Day"
	case ShiftGeneral:
		return "General"
	case ShiftNight:
		return "Night"
	}
	return code
}

// Candidate is the canonical assignment derived from one accepted ERP
// schedule row. Candidates are transient: they are rebuilt on every
// analysis pass and never persisted.
type Candidate struct {
	WorkOrder       string
	ProcessID       string
	OperatorCode    string
	OperatorName    string
	PartNumber      string
	PlannedQuantity float64
	WorkCenterCode  string
	DeviceID        string
	ShiftCode       string
	WorkdayCode     string
}

// IdentityKey correlates an ERP row with a local record across sync
// passes. Two records sharing the key are the same logical assignment
// regardless of their other field values.
func (c Candidate) IdentityKey() string {
	return IdentityKey(c.WorkCenterCode, c.PartNumber, c.WorkOrder)
}

func IdentityKey(workCenterCode, partNumber, workOrder string) string {
	return fmt.Sprintf("%s-%s-%s", workCenterCode, partNumber, workOrder)
}

// Local is an existing locally tracked assignment. Records imported
// from the ERP carry the remote event group/item identifiers; only
// those are eligible for UPDATE or DELETE classification.
type Local struct {
	ID             int64
	WorkOrder      string
	PartNumber     string
	WorkCenterCode string
	OperatorName   string
	Code           string // operator code proxy used for change detection
	Batch          float64
	OpNumbers      []string
	Date           string
	Shift          string // display name, e.g. "Day"
	ImportedFrom   string
	GroupID        string // remote event-group id, empty when unknown
	ItemID         string // remote event-item id, empty when unknown
	DeviceID       string
}

// IdentityKey mirrors Candidate.IdentityKey for local records.
func (l Local) IdentityKey() string {
	return IdentityKey(l.WorkCenterCode, l.PartNumber, l.WorkOrder)
}

// ImportedFromERP reports whether this record originates from an ERP
// sync pass rather than a manual entry.
func (l Local) ImportedFromERP() bool {
	return l.ImportedFrom == "ERP"
}

// HasOpNumber reports whether the record's operation-number list
// contains the given process id.
func (l Local) HasOpNumber(processID string) bool {
	for _, op := range l.OpNumbers {
		if op == processID {
			return true
		}
	}
	return false
}
