// Package shift maps plant shift codes onto UTC instant ranges. The
// plant runs in a fixed UTC+5:30 civil timezone; wall-clock components
// are built as if they were UTC and the fixed offset is subtracted,
// which keeps the conversion exact without a timezone database.
package shift

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"plansync/assignment"
)

// Offset of the plant's civil time from UTC.
const localOffset = 5*time.Hour + 30*time.Minute

var ErrInvalidDate = errors.New("invalid date")

// Range resolves a workday date ("YYYY-MM-DD") and shift code to the
// UTC start and end instants of that shift. The night shift spans
// midnight, so its end lands on the following calendar day.
func Range(dateStr, shiftCode string) (time.Time, time.Time, error) {
	year, month, day, err := parseDate(dateStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	var startH, startM, endH, endM, endDayOffset int
	switch shiftCode {
	case assignment.ShiftDay:
		// The day segment starts at the workday's local midnight, not
		// at the 08:00 clock-in; remote planning groups are keyed on
		// that instant.
		startH, endH = 0, 20
	case assignment.ShiftGeneral:
		startH, startM, endH, endM = 8, 30, 17, 30
	case assignment.ShiftNight:
		startH, endH, endDayOffset = 20, 8, 1
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: unknown shift code %q", ErrInvalidDate, shiftCode)
	}

	start := time.Date(year, time.Month(month), day, startH, startM, 0, 0, time.UTC).Add(-localOffset)
	end := time.Date(year, time.Month(month), day+endDayOffset, endH, endM, 0, 0, time.UTC).Add(-localOffset)
	return start, end, nil
}

// FormatISO renders an instant the way the remote event-group API
// expects it, e.g. "2026-01-16T18:30:00.000Z".
func FormatISO(value time.Time) string {
	return value.UTC().Format("2006-01-02T15:04:05.000Z")
}

func parseDate(value string) (year, month, day int, err error) {
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDate, value)
	}

	year, errYear := strconv.Atoi(parts[0])
	month, errMonth := strconv.Atoi(parts[1])
	day, errDay := strconv.Atoi(parts[2])
	if errYear != nil || errMonth != nil || errDay != nil {
		return 0, 0, 0, fmt.Errorf("%w: %q has non-numeric parts", ErrInvalidDate, value)
	}
	if year < 1 || month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, fmt.Errorf("%w: %q is out of range", ErrInvalidDate, value)
	}
	return year, month, day, nil
}
