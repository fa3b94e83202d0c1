package notify

import (
	"fmt"
	"strings"

	"usos_monitor/internal/model"
)

// FormatChanges renders one run's change events for a category as a plain
// text message. Events are grouped by kind in the order: newly available,
// count changed, became full. Groups whose meeting times could not be
// verified are marked.
func FormatChanges(cat model.Category, events []model.ChangeEvent, current model.Snapshot) string {
	var newAvailable, countChanged, becameFull []model.ChangeEvent
	for _, ev := range events {
		switch ev.Kind {
		case model.NewAvailable:
			newAvailable = append(newAvailable, ev)
		case model.CountChanged:
			countChanged = append(countChanged, ev)
		case model.BecameFull:
			becameFull = append(becameFull, ev)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n", cat.DisplayName)

	if len(newAvailable) > 0 {
		fmt.Fprintf(&b, "\nNew groups with free spots (%d):\n", len(newAvailable))
		for _, ev := range newAvailable {
			g := current[ev.GroupID]
			fmt.Fprintf(&b, "  + %s: %d free (%d total)%s\n",
				g.RegistrationName, g.FreeSpots, g.TotalSpots, unverifiedMark(g))
			writeSlots(&b, g)
		}
	}

	if len(countChanged) > 0 {
		fmt.Fprintf(&b, "\nFree spot counts changed (%d):\n", len(countChanged))
		for _, ev := range countChanged {
			g := current[ev.GroupID]
			fmt.Fprintf(&b, "  ~ %s: %s -> %d free%s\n",
				g.RegistrationName, formatPrev(ev.PreviousFree), g.FreeSpots, unverifiedMark(g))
		}
	}

	if len(becameFull) > 0 {
		fmt.Fprintf(&b, "\nNow full (%d):\n", len(becameFull))
		for _, ev := range becameFull {
			g := current[ev.GroupID]
			fmt.Fprintf(&b, "  - %s: %s -> 0 free\n", g.RegistrationName, formatPrev(ev.PreviousFree))
		}
	}

	return b.String()
}

func writeSlots(b *strings.Builder, g model.CourseGroup) {
	for _, s := range g.Slots {
		fmt.Fprintf(b, "      %s\n", s)
	}
}

func unverifiedMark(g model.CourseGroup) string {
	if g.Unverified {
		return " [time unverified, check manually]"
	}
	return ""
}

func formatPrev(prev *int) string {
	if prev == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *prev)
}
