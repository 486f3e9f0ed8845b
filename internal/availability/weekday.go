package availability

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for appointment dates.
const DateLayout = "2006-01-02"

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays in calendar order, Monday first.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var byTimeWeekday = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// ParseWeekday canonicalizes a weekday name. Matching ignores case and
// surrounding whitespace.
func ParseWeekday(s string) (Weekday, bool) {
	w := Weekday(strings.ToLower(strings.TrimSpace(s)))
	return w, w.Valid()
}

func (w Weekday) Valid() bool {
	for _, d := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// Title returns the capitalized name, e.g. "Monday".
func (w Weekday) Title() string {
	if w == "" {
		return ""
	}
	return strings.ToUpper(string(w[:1])) + string(w[1:])
}

// WeekdayOf returns the weekday a calendar date falls on.
func WeekdayOf(date time.Time) Weekday {
	return byTimeWeekday[date.Weekday()]
}

// ParseDate parses a YYYY-MM-DD date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// Today returns the calendar date of now in loc, formatted as YYYY-MM-DD.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}
