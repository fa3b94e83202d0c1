// Package diff classifies changes between two availability snapshots.
package diff

import (
	"sort"

	"usos_monitor/internal/model"
)

// Diff compares the previous and current snapshots and returns the
// notification-worthy transitions, sorted by GroupID ascending.
//
// Per group present in current:
//   - absent from previous with free spots         -> NEW_AVAILABLE
//   - free-spot count changed and still open       -> COUNT_CHANGED
//   - previously open, now zero free spots         -> BECAME_FULL
//   - unchanged count                              -> nothing
//
// Groups that disappeared from current produce nothing; they are simply
// absent from the next persisted snapshot. A nil previous snapshot is the
// first-ever run: every open group is NEW_AVAILABLE.
func Diff(previous, current model.Snapshot) []model.ChangeEvent {
	ids := make([]string, 0, len(current))
	for id := range current {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var events []model.ChangeEvent
	for _, id := range ids {
		cur := current[id]
		prev, existed := previous[id]

		if !existed {
			if cur.FreeSpots > 0 {
				events = append(events, model.ChangeEvent{
					GroupID:     id,
					Kind:        model.NewAvailable,
					CurrentFree: intPtr(cur.FreeSpots),
				})
			}
			continue
		}

		switch {
		case prev.FreeSpots > 0 && cur.FreeSpots == 0:
			events = append(events, model.ChangeEvent{
				GroupID:      id,
				Kind:         model.BecameFull,
				PreviousFree: intPtr(prev.FreeSpots),
				CurrentFree:  intPtr(cur.FreeSpots),
			})
		case prev.FreeSpots != cur.FreeSpots && cur.FreeSpots > 0:
			events = append(events, model.ChangeEvent{
				GroupID:      id,
				Kind:         model.CountChanged,
				PreviousFree: intPtr(prev.FreeSpots),
				CurrentFree:  intPtr(cur.FreeSpots),
			})
		}
	}
	return events
}

func intPtr(v int) *int { return &v }
