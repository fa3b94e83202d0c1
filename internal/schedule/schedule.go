// Package schedule derives the student's weekly busy-schedule from an
// iCalendar export.
package schedule

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	ics "github.com/arran4/golang-ical"

	"usos_monitor/internal/model"
)

// regularThreshold is the minimum number of occurrences for an event to
// count as a regular weekly class rather than a one-off meeting.
const regularThreshold = 3

// Parse reads an iCalendar export and returns the canonical weekly
// busy-schedule plus the number of events skipped due to parse problems.
//
// Events are pooled by (summary, weekday, start, end); a pool whose total
// occurrence count reaches regularThreshold becomes one TimeInterval. Only
// the weekly pattern survives; dates are discarded. The result is sorted by
// (day, start, end) and deduplicated, so the same input always yields the
// same output.
func Parse(r io.Reader) (model.BusySchedule, int, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, 0, fmt.Errorf("parse calendar: %w", err)
	}

	type pool struct {
		interval    model.TimeInterval
		occurrences int
	}
	pools := make(map[string]*pool)
	skipped := 0

	for _, ev := range cal.Events() {
		start, err := ev.GetStartAt()
		if err != nil {
			skipped++
			continue
		}
		end, err := ev.GetEndAt()
		if err != nil {
			skipped++
			continue
		}

		// Midnight-crossing events have no weekly-interval representation.
		sy, sm, sd := start.Date()
		ey, em, ed := end.Date()
		if sy != ey || sm != em || sd != ed {
			skipped++
			continue
		}

		interval, err := model.NewTimeInterval(
			// time.Weekday starts on Sunday, model.Weekday on Monday.
			model.Weekday((int(start.Weekday())+6)%7),
			start.Hour()*60+start.Minute(),
			end.Hour()*60+end.Minute(),
		)
		if err != nil {
			skipped++
			continue
		}

		summary := ""
		if p := ev.GetProperty(ics.ComponentPropertySummary); p != nil {
			summary = p.Value
		}

		key := fmt.Sprintf("%s|%d|%d|%d", summary, interval.Day, interval.StartMin, interval.EndMin)
		p, ok := pools[key]
		if !ok {
			p = &pool{interval: interval}
			pools[key] = p
		}
		p.occurrences += occurrences(ev)
	}

	seen := make(map[model.TimeInterval]bool)
	var busy model.BusySchedule
	for _, p := range pools {
		if p.occurrences < regularThreshold {
			continue
		}
		if seen[p.interval] {
			continue
		}
		seen[p.interval] = true
		busy = append(busy, p.interval)
	}

	sort.Slice(busy, func(i, j int) bool {
		a, b := busy[i], busy[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.StartMin != b.StartMin {
			return a.StartMin < b.StartMin
		}
		return a.EndMin < b.EndMin
	})

	return busy, skipped, nil
}

// occurrences returns how many times a single VEVENT occurs within the
// exported period. An RRULE COUNT already includes the DTSTART occurrence;
// an unbounded or UNTIL-bounded repeating rule is treated as regular.
// RDATE entries add to the DTSTART occurrence.
func occurrences(ev *ics.VEvent) int {
	if p := ev.GetProperty(ics.ComponentProperty("RRULE")); p != nil {
		for _, part := range strings.Split(p.Value, ";") {
			k, v, found := strings.Cut(part, "=")
			if found && strings.EqualFold(strings.TrimSpace(k), "COUNT") {
				if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
					return n
				}
			}
		}
		return regularThreshold
	}
	if p := ev.GetProperty(ics.ComponentProperty("RDATE")); p != nil {
		n := 0
		for _, d := range strings.Split(p.Value, ",") {
			if strings.TrimSpace(d) != "" {
				n++
			}
		}
		return 1 + n
	}
	return 1
}
