package availability

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid morning slot", "10:00-11:00", nil},
		{"single digit hour", "9:00-10:00", nil},
		{"window edges", "06:00-22:00", nil},
		{"malformed", "bad-slot", ErrMalformedSlot},
		{"missing end", "10:00", ErrMalformedSlot},
		{"hour out of range", "25:00-26:00", ErrMalformedSlot},
		{"minute out of range", "10:60-11:00", ErrMalformedSlot},
		{"end before start", "11:00-10:00", ErrSlotOrder},
		{"zero length", "10:00-10:00", ErrSlotOrder},
		{"before opening", "05:00-06:30", ErrOutsideHours},
		{"after closing", "21:30-22:30", ErrOutsideHours},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := ParseSlot(tt.input, DefaultWindow)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.input, slot.String())
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestNewWindow(t *testing.T) {
	w, err := NewWindow("08:30", "17:00")
	require.NoError(t, err)
	assert.Equal(t, Window{Start: 8*60 + 30, End: 17 * 60}, w)

	_, err = NewWindow("17:00", "08:30")
	assert.Error(t, err)

	_, err = NewWindow("8h", "17:00")
	assert.Error(t, err)

	_, err = ParseSlot("07:00-08:00", w)
	assert.ErrorIs(t, err, ErrOutsideHours)
}

func TestWeekdayOf(t *testing.T) {
	date, err := ParseDate("2030-01-07", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, Monday, WeekdayOf(date))
	assert.Equal(t, "Monday", WeekdayOf(date).Title())

	_, err = ParseDate("07/01/2030", time.UTC)
	assert.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	day, ok := ParseWeekday("  Friday ")
	assert.True(t, ok)
	assert.Equal(t, Friday, day)

	_, ok = ParseWeekday("funday")
	assert.False(t, ok)
}

func TestTemplate_SlotsFor(t *testing.T) {
	tpl := Template{Monday: {"09:00-10:00", "10:00-11:00"}}

	assert.Equal(t, []string{"09:00-10:00", "10:00-11:00"}, tpl.SlotsFor(Monday))
	assert.Empty(t, tpl.SlotsFor(Tuesday))
	assert.NotNil(t, tpl.SlotsFor(Weekday("holiday")))

	got := tpl.SlotsFor(Monday)
	got[0] = "mutated"
	assert.Equal(t, "09:00-10:00", tpl[Monday][0], "SlotsFor must not expose internal storage")
}

func TestTemplate_OffersIsVerbatim(t *testing.T) {
	tpl := Template{Monday: {"10:00-11:00"}}
	monday, _ := ParseDate("2030-01-07", time.UTC)
	tuesday, _ := ParseDate("2030-01-08", time.UTC)

	assert.True(t, tpl.OffersOn(monday, "10:00-11:00"))
	assert.False(t, tpl.OffersOn(monday, "10:00-10:30"), "sub-range of an offered slot is not offered")
	assert.False(t, tpl.OffersOn(monday, "10:00-11:30"), "overlapping range is not offered")
	assert.False(t, tpl.OffersOn(monday, "10:00 - 11:00"))
	assert.False(t, tpl.OffersOn(tuesday, "10:00-11:00"))
}

func TestDecodeScheduleInput_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		shape   Shape
		days    []Weekday
		ignored []string
		wantErr error
	}{
		{
			name:  "wrapped",
			body:  `{"available_timeslots": {"monday": ["09:00-10:00"]}}`,
			shape: ShapeWrapped,
			days:  []Weekday{Monday},
		},
		{
			name:  "day keyed mixed case",
			body:  `{"Monday": ["09:00-10:00"], "tuesday": []}`,
			shape: ShapeDayKeyed,
			days:  []Weekday{Monday, Tuesday},
		},
		{
			name:    "filtered",
			body:    `{"monday": ["10:00-11:00"], "funday": ["09:00-10:00"], "doctor_id": 4}`,
			shape:   ShapeFiltered,
			days:    []Weekday{Monday},
			ignored: []string{"doctor_id", "funday"},
		},
		{name: "no weekday keys", body: `{"funday": ["09:00-10:00"]}`, wantErr: ErrNoWeekdayKeys},
		{name: "empty object", body: `{}`, wantErr: ErrNoScheduleData},
		{name: "wrapped empty", body: `{"available_timeslots": {}}`, wantErr: ErrNoScheduleData},
		{name: "wrapped not an object", body: `{"available_timeslots": ["09:00-10:00"]}`, wantErr: ErrWrapperNotValid},
		{name: "array body", body: `["monday"]`, wantErr: ErrNotAnObject},
		{name: "null body", body: `null`, wantErr: ErrNotAnObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := DecodeScheduleInput([]byte(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.shape, input.Shape)
			assert.Len(t, input.Days, len(tt.days))
			for _, d := range tt.days {
				assert.Contains(t, input.Days, d)
			}
			assert.Equal(t, tt.ignored, input.Ignored)
		})
	}
}

func TestClean_DropsInvalidEntries(t *testing.T) {
	input, err := DecodeScheduleInput([]byte(`{"monday": ["10:00-11:00", "bad-slot"], "funday": ["09:00-10:00"]}`))
	require.NoError(t, err)

	tpl, rejected := Clean(input, DefaultWindow)

	assert.Equal(t, Template{Monday: {"10:00-11:00"}}, tpl)
	require.Len(t, rejected, 1)
	assert.Equal(t, "bad-slot", rejected[0].Value)
	assert.Equal(t, Monday, rejected[0].Day)
}

func TestClean_Coercions(t *testing.T) {
	body := `{
		"monday": "09:00-10:00",
		"tuesday": [" 10:00-11:00 ", 42, "", "23:00-23:30"],
		"wednesday": {"slot": "09:00-10:00"},
		"thursday": "   "
	}`
	input, err := DecodeScheduleInput([]byte(body))
	require.NoError(t, err)

	tpl, rejected := Clean(input, DefaultWindow)

	assert.Equal(t, []string{"09:00-10:00"}, tpl[Monday], "lone string becomes a one-element list")
	assert.Equal(t, []string{"10:00-11:00"}, tpl[Tuesday])
	assert.NotContains(t, tpl, Wednesday, "non-list day value is skipped")
	assert.Equal(t, []string{}, tpl[Thursday])
	assert.Len(t, rejected, 3)
}

func TestCanonical(t *testing.T) {
	tpl, unknown := Canonical(map[string][]string{
		"MONDAY": {"09:00-10:00"},
		"funday": {"09:00-10:00"},
	})
	assert.Equal(t, Template{Monday: {"09:00-10:00"}}, tpl)
	assert.Equal(t, []string{"funday"}, unknown)
}

func TestCanonical_EmptyDayStaysAnArray(t *testing.T) {
	tpl, _ := Canonical(map[string][]string{
		"monday":  {"10:00-11:00"},
		"tuesday": {},
	})
	require.NotNil(t, tpl[Tuesday])
	assert.Empty(t, tpl[Tuesday])

	raw, err := bson.Marshal(bson.M{"available_timeslots": tpl})
	require.NoError(t, err)
	day := bson.Raw(raw).Lookup("available_timeslots", "tuesday")
	assert.Equal(t, bsontype.Array, day.Type, "empty weekday must not be stored as null")

	assert.NotNil(t, tpl.Clone()[Tuesday])
}
