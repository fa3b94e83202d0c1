// Package model defines the domain types used across the application.
package model

import "fmt"

// Weekday identifies a day of the week, Monday first.
type Weekday int

// Days of the week.
const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

// TimeInterval is a weekly recurring time range on a single day.
// Minutes are offsets from midnight; the range is half-open [StartMin, EndMin)
// and never spans midnight.
type TimeInterval struct {
	Day      Weekday `json:"day"`
	StartMin int     `json:"start_min"`
	EndMin   int     `json:"end_min"`
}

// NewTimeInterval validates the bounds and returns the interval.
func NewTimeInterval(day Weekday, startMin, endMin int) (TimeInterval, error) {
	if day < Monday || day > Sunday {
		return TimeInterval{}, fmt.Errorf("invalid weekday %d", int(day))
	}
	if startMin < 0 || startMin >= 1440 || endMin <= 0 || endMin > 1440 {
		return TimeInterval{}, fmt.Errorf("minutes out of range: %d-%d", startMin, endMin)
	}
	if startMin >= endMin {
		return TimeInterval{}, fmt.Errorf("start %d is not before end %d", startMin, endMin)
	}
	return TimeInterval{Day: day, StartMin: startMin, EndMin: endMin}, nil
}

func (ti TimeInterval) String() string {
	return fmt.Sprintf("%s %02d:%02d-%02d:%02d",
		ti.Day, ti.StartMin/60, ti.StartMin%60, ti.EndMin/60, ti.EndMin%60)
}

// BusySchedule is the student's weekly recurring commitments, sorted by
// (day, start, end) and deduplicated.
type BusySchedule []TimeInterval

// CourseGroup is one registration section of a course with its meeting
// times and seat counts.
type CourseGroup struct {
	GroupID          string         `json:"group_id"`
	RegistrationName string         `json:"registration_name"`
	Slots            []TimeInterval `json:"slots"`
	FreeSpots        int            `json:"free_spots"`
	TotalSpots       int            `json:"total_spots"`
	RawDescription   string         `json:"raw_description"`
	// Unverified marks a group whose time description could not be parsed;
	// it is kept as non-conflicting but the student should double-check.
	Unverified bool `json:"unverified"`
}

// Snapshot maps GroupID to the non-conflicting groups observed in one run.
type Snapshot map[string]CourseGroup

// ChangeKind classifies a change between two snapshots.
type ChangeKind string

// Change kinds produced by the differ.
const (
	NewAvailable ChangeKind = "NEW_AVAILABLE"
	CountChanged ChangeKind = "COUNT_CHANGED"
	BecameFull   ChangeKind = "BECAME_FULL"
)

// ChangeEvent is a single notification-worthy transition for one group.
// PreviousFree is nil when the group was absent from the previous snapshot.
type ChangeEvent struct {
	GroupID      string
	Kind         ChangeKind
	PreviousFree *int
	CurrentFree  *int
}

// RawGroup is a group record as scraped from the registration page,
// before its time description has been parsed.
type RawGroup struct {
	GroupID            string
	RegistrationName   string
	RawTimeDescription string
	FreeSpots          int
	TotalSpots         int
}

// Category is one monitored registration.
type Category struct {
	Code        string
	DisplayName string
}
