package enums

import (
	"fmt"
	"strings"
)

// DayOfWeek names a working-hours row. Stored upper-case.
type DayOfWeek string

const (
	DayMonday    DayOfWeek = "MONDAY"
	DayTuesday   DayOfWeek = "TUESDAY"
	DayWednesday DayOfWeek = "WEDNESDAY"
	DayThursday  DayOfWeek = "THURSDAY"
	DayFriday    DayOfWeek = "FRIDAY"
	DaySaturday  DayOfWeek = "SATURDAY"
	DaySunday    DayOfWeek = "SUNDAY"
)

// Weekdays lists the days in display order, Monday first.
var Weekdays = []DayOfWeek{
	DayMonday,
	DayTuesday,
	DayWednesday,
	DayThursday,
	DayFriday,
	DaySaturday,
	DaySunday,
}

// String implements fmt.Stringer.
func (d DayOfWeek) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DayOfWeek.
func (d DayOfWeek) IsValid() bool {
	return d.Index() >= 0
}

// Index is the position in Weekdays, or -1.
func (d DayOfWeek) Index() int {
	for i, candidate := range Weekdays {
		if candidate == d {
			return i
		}
	}
	return -1
}

// ParseDayOfWeek accepts any casing and surrounding whitespace.
func ParseDayOfWeek(value string) (DayOfWeek, error) {
	day := DayOfWeek(strings.ToUpper(strings.TrimSpace(value)))
	if !day.IsValid() {
		return "", fmt.Errorf("invalid day of week %q", value)
	}
	return day, nil
}
