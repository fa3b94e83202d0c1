// Package conflict decides whether candidate course slots collide with the
// student's busy-schedule.
package conflict

import "usos_monitor/internal/model"

// Overlaps reports whether two intervals collide: same day and overlapping
// half-open ranges. Touching endpoints (one ends exactly when the other
// starts) do not collide.
func Overlaps(a, b model.TimeInterval) bool {
	return a.Day == b.Day && a.StartMin < b.EndMin && b.StartMin < a.EndMin
}

// Conflicts reports whether any candidate slot collides with any busy
// interval. An empty slot list never conflicts; the caller marks such
// groups as unverified instead of dropping them.
func Conflicts(busy model.BusySchedule, slots []model.TimeInterval) bool {
	for _, s := range slots {
		for _, b := range busy {
			if Overlaps(s, b) {
				return true
			}
		}
	}
	return false
}
