package erp

import "github.com/tidwall/gjson"

// Row is one raw schedule row as reported by the ERP. The upstream
// payload is loosely typed and field names drift between plants, so
// rows are decoded field by field with explicit fallbacks instead of
// unmarshalling into a rigid struct.
type Row struct {
	WorkdayCode    string
	ShiftCode      string
	RouteCardNbr   string
	ProcessID      string
	OperatorCode   string
	OperatorName   string
	ItemCode       string
	QtyPlanned     float64
	WorkCenterCode string
}

func rowFromJSON(value gjson.Result) Row {
	return Row{
		WorkdayCode:    value.Get("WorkdayCode").String(),
		ShiftCode:      value.Get("ShiftCode").String(),
		RouteCardNbr:   value.Get("RouteCardNbr").String(),
		ProcessID:      value.Get("ProcessID").String(),
		OperatorCode:   value.Get("OperatorCode").String(),
		OperatorName:   firstPresent(value, "OperatorName", "Operator", "Name"),
		ItemCode:       value.Get("ItemCode").String(),
		QtyPlanned:     value.Get("QtyPlanned").Float(),
		WorkCenterCode: value.Get("WorkCenterCode").String(),
	}
}

func firstPresent(value gjson.Result, keys ...string) string {
	for _, key := range keys {
		if field := value.Get(key); field.Exists() {
			return field.String()
		}
	}
	return ""
}
