package availability

import "time"

// Template is a doctor's weekly recurring schedule. Slot order within a day
// is preserved as entered. A weekday with no key has no availability.
type Template map[Weekday][]string

// SlotsFor returns the slots offered on weekday w. Unknown or absent
// weekdays yield an empty slice.
func (t Template) SlotsFor(w Weekday) []string {
	slots, ok := t[w]
	if !ok {
		return []string{}
	}
	out := make([]string, len(slots))
	copy(out, slots)
	return out
}

// Offers reports whether slot appears verbatim under w.
func (t Template) Offers(w Weekday, slot string) bool {
	for _, s := range t[w] {
		if s == slot {
			return true
		}
	}
	return false
}

// OffersOn reports whether slot is offered on the weekday date falls on.
func (t Template) OffersOn(date time.Time, slot string) bool {
	return t.Offers(WeekdayOf(date), slot)
}

func (t Template) Clone() Template {
	out := make(Template, len(t))
	for day, slots := range t {
		out[day] = append(make([]string, 0, len(slots)), slots...)
	}
	return out
}

// Canonical lowercases and trims keys. Entries whose key is not a weekday are
// returned in unknown. Slot values are left untouched. A weekday given with no
// slots maps to an empty, non-nil list.
func Canonical(raw map[string][]string) (t Template, unknown []string) {
	t = make(Template, len(raw))
	for key, slots := range raw {
		day, ok := ParseWeekday(key)
		if !ok {
			unknown = append(unknown, key)
			continue
		}
		if _, seen := t[day]; !seen {
			t[day] = []string{}
		}
		t[day] = append(t[day], slots...)
	}
	return t, unknown
}
