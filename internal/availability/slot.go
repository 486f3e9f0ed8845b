package availability

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrMalformedSlot = errors.New("time slot must be in format HH:MM-HH:MM")
	ErrSlotOrder     = errors.New("start time must be before end time")
	ErrOutsideHours  = errors.New("time slot must be within business hours")
)

var (
	slotRegex  = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]-([01]?[0-9]|2[0-3]):[0-5][0-9]$`)
	clockRegex = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)
)

// Window is the business-hours range slots must fall inside, in minutes
// after midnight.
type Window struct {
	Start int
	End   int
}

// DefaultWindow is 06:00-22:00.
var DefaultWindow = Window{Start: 6 * 60, End: 22 * 60}

func NewWindow(start, end string) (Window, error) {
	s, err := parseClock(start)
	if err != nil {
		return Window{}, fmt.Errorf("invalid business hours start %q: %w", start, err)
	}
	e, err := parseClock(end)
	if err != nil {
		return Window{}, fmt.Errorf("invalid business hours end %q: %w", end, err)
	}
	if s >= e {
		return Window{}, fmt.Errorf("business hours start %s must be before end %s", start, end)
	}
	return Window{Start: s, End: e}, nil
}

func (w Window) String() string {
	return formatClock(w.Start) + "-" + formatClock(w.End)
}

// Slot is a parsed "HH:MM-HH:MM" string.
type Slot struct {
	Raw   string
	Start int
	End   int
}

func (s Slot) String() string {
	return s.Raw
}

// ParseSlotFormat checks only the HH:MM-HH:MM shape and start < end.
func ParseSlotFormat(raw string) (Slot, error) {
	if !slotRegex.MatchString(raw) {
		return Slot{}, ErrMalformedSlot
	}
	startStr, endStr, _ := strings.Cut(raw, "-")
	start, _ := parseClock(startStr)
	end, _ := parseClock(endStr)
	if start >= end {
		return Slot{}, ErrSlotOrder
	}
	return Slot{Raw: raw, Start: start, End: end}, nil
}

// ParseSlot validates raw against the format rules and the business-hours window.
func ParseSlot(raw string, window Window) (Slot, error) {
	slot, err := ParseSlotFormat(raw)
	if err != nil {
		return Slot{}, err
	}
	if slot.Start < window.Start || slot.End > window.End {
		return Slot{}, fmt.Errorf("%w (%s)", ErrOutsideHours, window)
	}
	return slot, nil
}

func parseClock(s string) (int, error) {
	if !clockRegex.MatchString(s) {
		return 0, ErrMalformedSlot
	}
	hh, mm, _ := strings.Cut(s, ":")
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return h*60 + m, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
