package lighthouse

import "time"

// PlanningHorizon is the window pulled into the local snapshot: one
// week back to catch late corrections, two weeks forward to cover the
// published plan. Snapshot replacement drops everything outside it.
func PlanningHorizon(now time.Time) (time.Time, time.Time) {
	day := now.UTC().Truncate(24 * time.Hour)
	return day.AddDate(0, 0, -7), day.AddDate(0, 0, 15)
}
