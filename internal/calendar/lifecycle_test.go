package calendar

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weekcal-api/internal/models"
)

func TestValidateTimes(t *testing.T) {
	cases := []struct {
		name  string
		start string
		end   string
		want  string
	}{
		{"valid", "09:00", "10:30", ""},
		{"end before start", "14:00", "12:00", MsgEndBeforeStart},
		{"equal times", "12:00", "12:00", MsgEndBeforeStart},
		{"missing start", "", "12:00", MsgTimesRequired},
		{"missing end", "12:00", "", MsgTimesRequired},
		{"malformed", "noon", "13:00", MsgInvalidTime},
		{"out of range", "09:00", "24:00", MsgInvalidTime},
		{"one minute", "23:58", "23:59", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTimes(tc.start, tc.end)
			if tc.want == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tc.want, vErr.Message)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestValidateFormTrimsTitle(t *testing.T) {
	form, err := ValidateForm(EventFormData{Title: "  Standup  ", StartTime: "09:00", EndTime: "09:15"})
	require.NoError(t, err)
	assert.Equal(t, "Standup", form.Title)

	_, err = ValidateForm(EventFormData{Title: "   ", StartTime: "09:00", EndTime: "09:15"})
	require.Error(t, err)
	assert.Equal(t, MsgTitleRequired, err.Error())

	_, err = ValidateForm(EventFormData{Title: "x", StartTime: "10:00", EndTime: "09:15"})
	require.Error(t, err)
	assert.Equal(t, MsgEndBeforeStart, err.Error())
}

func TestBuildEvent(t *testing.T) {
	form := EventFormData{
		Title:     "Design Review",
		StartTime: "14:00",
		EndTime:   "15:30",
		Date:      time.Date(2025, time.December, 29, 17, 42, 13, 500, time.UTC),
	}
	draft, err := BuildEvent(form, "#4ECDC4")
	require.NoError(t, err)
	assert.Equal(t, "Design Review", draft.Title)
	assert.Equal(t, "#4ECDC4", draft.Color)
	assert.True(t, draft.Start.Equal(time.Date(2025, time.December, 29, 14, 0, 0, 0, time.UTC)))
	assert.True(t, draft.End.Equal(time.Date(2025, time.December, 29, 15, 30, 0, 0, time.UTC)))

	_, err = BuildEvent(EventFormData{StartTime: "1400", EndTime: "15:00", Date: form.Date}, "")
	require.Error(t, err)
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("07:05")
	require.NoError(t, err)
	assert.Equal(t, 7, h)
	assert.Equal(t, 5, m)

	for _, raw := range []string{"", "7", "07:5", "aa:bb", "-1:00", "12:60"} {
		_, _, err := ParseClock(raw)
		assert.Error(t, err, raw)
	}
}

func TestFormatEventTime(t *testing.T) {
	e := models.CalendarEvent{Start: date(2024, time.January, 15, 9, 0), End: date(2024, time.January, 15, 13, 30)}
	assert.Equal(t, "9:00 AM - 1:30 PM", FormatEventTime(e))
}

func TestTimeSlotStart(t *testing.T) {
	slot := TimeSlot{Date: date(2024, time.January, 15, 18, 20), Hour: 9}
	assert.True(t, slot.Start().Equal(date(2024, time.January, 15, 9, 0)))
}
