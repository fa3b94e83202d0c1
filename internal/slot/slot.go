// Package slot parses raw USOS time-slot descriptions into weekly intervals.
package slot

import (
	"regexp"
	"strconv"
	"strings"

	"usos_monitor/internal/model"
)

// slotRe matches one "day HH:MM-HH:MM" sub-pattern. The dash may be a
// hyphen, en dash or em dash, with arbitrary whitespace around it.
var slotRe = regexp.MustCompile(`(?i)(\p{L}+)\.?\s+(\d{1,2}):(\d{2})\s*[-–—]\s*(\d{1,2}):(\d{2})`)

// dayTokens maps lowercase day-of-week tokens to the canonical weekday.
// USOS renders Polish names and abbreviations; English abbreviations are
// accepted as well.
var dayTokens = map[string]model.Weekday{
	"pn": model.Monday, "pon": model.Monday, "poniedziałek": model.Monday, "poniedzialek": model.Monday,
	"wt": model.Tuesday, "wtorek": model.Tuesday,
	"śr": model.Wednesday, "sr": model.Wednesday, "śro": model.Wednesday, "środa": model.Wednesday, "sroda": model.Wednesday,
	"cz": model.Thursday, "czw": model.Thursday, "czwartek": model.Thursday,
	"pt": model.Friday, "pi": model.Friday, "piątek": model.Friday, "piatek": model.Friday,
	"sob": model.Saturday, "sb": model.Saturday, "sobota": model.Saturday,
	"nd": model.Sunday, "ndz": model.Sunday, "niedz": model.Sunday, "niedziela": model.Sunday,

	"mon": model.Monday, "tue": model.Tuesday, "wed": model.Wednesday,
	"thu": model.Thursday, "fri": model.Friday, "sat": model.Saturday, "sun": model.Sunday,
}

// Parse extracts every recognizable "day HH:MM-HH:MM" sub-pattern from a raw
// group time description, one TimeInterval per sub-pattern. A description
// that yields nothing recognizable returns an empty slice, never an error;
// the caller decides what an unverifiable group means.
func Parse(raw string) []model.TimeInterval {
	var slots []model.TimeInterval
	for _, m := range slotRe.FindAllStringSubmatch(raw, -1) {
		day, ok := dayTokens[strings.ToLower(m[1])]
		if !ok {
			continue
		}
		startH, _ := strconv.Atoi(m[2])
		startM, _ := strconv.Atoi(m[3])
		endH, _ := strconv.Atoi(m[4])
		endM, _ := strconv.Atoi(m[5])

		interval, err := model.NewTimeInterval(day, startH*60+startM, endH*60+endM)
		if err != nil {
			continue
		}
		slots = append(slots, interval)
	}
	return slots
}
