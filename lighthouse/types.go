package lighthouse

// Device is one entry of the cluster's device directory.
type Device struct {
	ID         string `json:"id"`
	DeviceName string `json:"deviceName"`
	ForeignID  string `json:"foreignId"`
}

// ItemMetadata carries the canonical assignment fields on an event
// item. UniqueIdentifier holds the work-center/part/work-order
// identity key used to correlate items across sync passes.
type ItemMetadata struct {
	AnnotationType   string  `json:"annotationType"`
	ImportedFrom     string  `json:"importedFrom"`
	UniqueIdentifier string  `json:"uniqueIdentifier"`
	WorkOrder        string  `json:"workOrder"`
	ProcessID        string  `json:"processId"`
	OperatorCode     string  `json:"operatorCode"`
	OperatorName     string  `json:"operatorName"`
	PartNumber       string  `json:"partNumber"`
	PlannedQuantity  float64 `json:"plannedQuantity"`
	WorkCenterCode   string  `json:"workCenterCode"`
	ShiftCode        string  `json:"shiftCode"`
	WorkdayCode      string  `json:"workdayCode"`
}

// PlanningItem is one remote event item together with its owning
// group, as returned by the planning-annotation listing.
type PlanningItem struct {
	GroupID      string       `json:"groupId"`
	ItemID       string       `json:"itemId"`
	DeviceID     string       `json:"deviceId"`
	SegmentStart string       `json:"segmentStart"`
	SegmentEnd   string       `json:"segmentEnd"`
	Metadata     ItemMetadata `json:"metadata"`
}

// ItemCreate is a new event item inside a group create or update.
type ItemCreate struct {
	SegmentStart string       `json:"segmentStart"`
	SegmentEnd   string       `json:"segmentEnd"`
	Metadata     ItemMetadata `json:"metadata"`
}

// ItemUpdate rewrites the fields of an existing event item.
type ItemUpdate struct {
	ID           string       `json:"id"`
	SegmentStart string       `json:"segmentStart"`
	SegmentEnd   string       `json:"segmentEnd"`
	Metadata     ItemMetadata `json:"metadata"`
}

// GroupCreate provisions a new event group with its initial items.
type GroupCreate struct {
	DeviceID     string       `json:"deviceId"`
	Title        string       `json:"title"`
	SegmentStart string       `json:"segmentStart"`
	SegmentEnd   string       `json:"segmentEnd"`
	Items        []ItemCreate `json:"items"`
}

// GroupUpdate mutates an existing event group's items.
type GroupUpdate struct {
	GroupID  string       `json:"groupId"`
	DeviceID string       `json:"deviceId"`
	Items    GroupItemOps `json:"items"`
}

type GroupItemOps struct {
	Create []ItemCreate `json:"create,omitempty"`
	Update []ItemUpdate `json:"update,omitempty"`
	Delete []string     `json:"delete,omitempty"`
}

// BatchRequest is the single combined mutation body. All group
// creations and updates ride in one request so sibling operations on
// the same group cannot race each other.
type BatchRequest struct {
	Create []GroupCreate `json:"create,omitempty"`
	Update []GroupUpdate `json:"update,omitempty"`
}

func (r BatchRequest) Empty() bool {
	return len(r.Create) == 0 && len(r.Update) == 0
}
