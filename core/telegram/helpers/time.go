package helpers

import (
	"strings"
	"time"
)

// dateLayouts cover ISO order and the day-first forms Indonesian users type.
var dateLayouts = []string{
	"2006-01-02", "2006-1-2",
	"02.01.2006", "2.1.2006",
	"02/01/2006", "2/1/2006",
}

// ParseFlexibleDateIn parses a date, optionally followed by " HH:MM", in loc
// (time.Local when nil).
func ParseFlexibleDateIn(input string, loc *time.Location) (time.Time, bool) {
	s := strings.Join(strings.Fields(input), " ")
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	layout := func(date string) string { return date }
	if strings.Contains(s, " ") {
		layout = func(date string) string { return date + " 15:04" }
	}
	for _, l := range dateLayouts {
		if t, err := time.ParseInLocation(layout(l), s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
