package availability

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// WrapperKey is the envelope key accepted by the self-service schedule edit.
const WrapperKey = "available_timeslots"

var (
	ErrNotAnObject     = errors.New("schedule must be a JSON object")
	ErrNoScheduleData  = errors.New("no valid schedule data provided")
	ErrNoWeekdayKeys   = errors.New("expected schedule data with day keys")
	ErrWrapperNotValid = errors.New("available_timeslots must be an object of day keys")
)

// Shape names which of the accepted request layouts a schedule edit used.
type Shape int

const (
	// ShapeWrapped is {"available_timeslots": {"monday": [...]}}.
	ShapeWrapped Shape = iota + 1
	// ShapeDayKeyed is {"monday": [...], "tuesday": [...]}; every key is a weekday.
	ShapeDayKeyed
	// ShapeFiltered mixes weekday keys with unrelated ones, which are dropped.
	ShapeFiltered
)

func (s Shape) String() string {
	switch s {
	case ShapeWrapped:
		return "wrapped"
	case ShapeDayKeyed:
		return "day_keyed"
	case ShapeFiltered:
		return "filtered"
	default:
		return "unknown"
	}
}

// ScheduleInput is a decoded schedule edit. Day values are kept raw so that
// Clean can decide per entry what to keep.
type ScheduleInput struct {
	Shape   Shape
	Days    map[Weekday]json.RawMessage
	Ignored []string
}

// DecodeScheduleInput classifies body into one of the accepted shapes.
func DecodeScheduleInput(body []byte) (ScheduleInput, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil || top == nil {
		return ScheduleInput{}, ErrNotAnObject
	}

	if wrapped, ok := top[WrapperKey]; ok {
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(wrapped, &inner); err != nil {
			return ScheduleInput{}, ErrWrapperNotValid
		}
		days, ignored := splitWeekdayKeys(inner)
		if len(days) == 0 {
			return ScheduleInput{}, ErrNoScheduleData
		}
		return ScheduleInput{Shape: ShapeWrapped, Days: days, Ignored: ignored}, nil
	}

	days, ignored := splitWeekdayKeys(top)
	if len(days) == 0 {
		if len(top) == 0 {
			return ScheduleInput{}, ErrNoScheduleData
		}
		return ScheduleInput{}, fmt.Errorf("%w, received keys: %s", ErrNoWeekdayKeys, strings.Join(ignored, ", "))
	}

	shape := ShapeDayKeyed
	if len(ignored) > 0 {
		shape = ShapeFiltered
	}
	return ScheduleInput{Shape: shape, Days: days, Ignored: ignored}, nil
}

// splitWeekdayKeys canonicalizes weekday keys. When a weekday appears under
// several spellings the exact lowercase key wins.
func splitWeekdayKeys(in map[string]json.RawMessage) (map[Weekday]json.RawMessage, []string) {
	days := make(map[Weekday]json.RawMessage, len(in))
	var ignored []string
	for key, value := range in {
		day, ok := ParseWeekday(key)
		if !ok {
			ignored = append(ignored, key)
			continue
		}
		if _, seen := days[day]; seen && key != string(day) {
			continue
		}
		days[day] = value
	}
	sort.Strings(ignored)
	return days, ignored
}

// Rejection describes an entry dropped by Clean.
type Rejection struct {
	Day    Weekday
	Value  string
	Reason string
}

// Clean turns a decoded schedule edit into a Template, dropping anything
// invalid. A lone string is treated as a one-element list. A day whose value
// is neither a string nor a list is skipped entirely.
func Clean(input ScheduleInput, window Window) (Template, []Rejection) {
	out := make(Template, len(input.Days))
	var rejected []Rejection

	for _, day := range Weekdays {
		raw, ok := input.Days[day]
		if !ok {
			continue
		}

		entries, err := decodeDayEntries(raw)
		if err != nil {
			rejected = append(rejected, Rejection{Day: day, Value: compact(raw), Reason: err.Error()})
			continue
		}

		valid := make([]string, 0, len(entries))
		for _, entry := range entries {
			s, isString := entry.(string)
			if !isString {
				rejected = append(rejected, Rejection{Day: day, Value: fmt.Sprint(entry), Reason: "time slot must be a string"})
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if _, err := ParseSlot(s, window); err != nil {
				rejected = append(rejected, Rejection{Day: day, Value: s, Reason: err.Error()})
				continue
			}
			valid = append(valid, s)
		}
		out[day] = valid
	}

	return out, rejected
}

func decodeDayEntries(raw json.RawMessage) ([]any, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("unreadable timeslots: %w", err)
	}
	switch v := value.(type) {
	case []any:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return []any{}, nil
		}
		return []any{v}, nil
	default:
		return nil, errors.New("timeslots must be a list of strings")
	}
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
