package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestWeekday_TimeRoundtrip checks the Monday-based to Sunday-based mapping.
func TestWeekday_TimeRoundtrip(t *testing.T) {
	t.Parallel()

	require.Equal(t, time.Monday, Monday.Time())
	require.Equal(t, time.Saturday, Saturday.Time())
	require.Equal(t, time.Sunday, Sunday.Time())

	for d := Monday; d <= Sunday; d++ {
		require.Equal(t, d, WeekdayFromTime(d.Time()))
	}
}

// TestAlarm_Validate rejects out-of-range fields and accepts valid ones.
func TestAlarm_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		alarm Alarm
		field string
	}{
		{name: "hour too large", alarm: Alarm{Hour: 24}, field: "hour"},
		{name: "hour negative", alarm: Alarm{Hour: -1}, field: "hour"},
		{name: "minute too large", alarm: Alarm{Minute: 60}, field: "minute"},
		{name: "bad weekday", alarm: Alarm{Recurrence: []Weekday{7}}, field: "recurrence"},
		{name: "ok", alarm: Alarm{Hour: 23, Minute: 59, Recurrence: []Weekday{Monday, Sunday}}},
	}

	for _, tc := range cases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.alarm.Validate()
			if tc.field == "" {
				require.NoError(t, err)
				return
			}

			var validationErr *ValidationError

			require.ErrorAs(t, err, &validationErr)
			require.Equal(t, tc.field, validationErr.Field)
		})
	}
}

// TestAlarm_Normalize applies the label default and canonicalizes recurrence.
func TestAlarm_Normalize(t *testing.T) {
	t.Parallel()

	a := &Alarm{Hour: 8, Minute: 30, Recurrence: []Weekday{Friday, Monday, Friday}}
	a.Normalize()

	require.Equal(t, DefaultLabel, a.Label)
	require.Equal(t, []Weekday{Monday, Friday}, a.Recurrence)

	// Empty recurrence stays an empty, non-nil slice.
	b := &Alarm{Label: "Walk the dog"}
	b.Normalize()

	require.Equal(t, "Walk the dog", b.Label)
	require.NotNil(t, b.Recurrence)
	require.Empty(t, b.Recurrence)
}

// TestAlarm_Clone ensures the copy does not alias the recurrence slice.
func TestAlarm_Clone(t *testing.T) {
	t.Parallel()

	original := &Alarm{ID: "a1", Label: "Wake up", Hour: 7, Recurrence: []Weekday{Monday}}
	cloned := original.Clone()

	require.Equal(t, original, cloned)
	require.NotSame(t, original, cloned)

	cloned.Recurrence[0] = Sunday
	require.Equal(t, Monday, original.Recurrence[0])
}
