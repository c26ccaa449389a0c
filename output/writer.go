package output

import (
	"fmt"
	"strings"

	"plansync/reconcile"
)

// Writer renders a pending change set into a review file.
type Writer interface {
	Write(path string, changes reconcile.ChangeSet) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

var reportHeaders = []string{"Type", "ID", "Title", "Subtitle", "Diff", "DeviceID", "SegmentStart", "SegmentEnd"}

func reportRow(change reconcile.Change) []string {
	deviceID, segmentStart, segmentEnd := "", "", ""
	switch {
	case change.Add != nil:
		deviceID = change.Add.DeviceID
		segmentStart = change.Add.SegmentStart
		segmentEnd = change.Add.SegmentEnd
	case change.Update != nil:
		deviceID = change.Update.DeviceID
		if len(change.Update.Items) > 0 {
			segmentStart = change.Update.Items[0].SegmentStart
			segmentEnd = change.Update.Items[0].SegmentEnd
		}
	case change.Delete != nil:
		deviceID = change.Delete.DeviceID
	}

	return []string{
		string(change.Type),
		change.ID,
		change.Title,
		change.Subtitle,
		change.Diff,
		deviceID,
		segmentStart,
		segmentEnd,
	}
}
