package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

func TestParseRecurrence(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		spec     string
		expected []alarm.Weekday
	}{
		{name: "empty means once", spec: "", expected: nil},
		{name: "once", spec: "once", expected: nil},
		{
			name: "daily",
			spec: "daily",
			expected: []alarm.Weekday{
				alarm.Monday, alarm.Tuesday, alarm.Wednesday, alarm.Thursday,
				alarm.Friday, alarm.Saturday, alarm.Sunday,
			},
		},
		{
			name: "weekdays",
			spec: "weekdays",
			expected: []alarm.Weekday{
				alarm.Monday, alarm.Tuesday, alarm.Wednesday, alarm.Thursday, alarm.Friday,
			},
		},
		{name: "weekends", spec: "weekends", expected: []alarm.Weekday{alarm.Saturday, alarm.Sunday}},
		{name: "short names", spec: "mon,fri", expected: []alarm.Weekday{alarm.Monday, alarm.Friday}},
		{name: "full names", spec: "Saturday,Sunday", expected: []alarm.Weekday{alarm.Saturday, alarm.Sunday}},
		{name: "numbers", spec: "0,4", expected: []alarm.Weekday{alarm.Monday, alarm.Friday}},
		{name: "deduplicated and sorted", spec: "fri,mon,fri", expected: []alarm.Weekday{alarm.Monday, alarm.Friday}},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			parsed, err := ParseRecurrence(tc.spec)
			require.NoError(t, err)
			require.Equal(t, tc.expected, parsed)
		})
	}
}

func TestParseRecurrence_Invalid(t *testing.T) {
	t.Parallel()

	for _, spec := range []string{"someday", "7", "-1", "mon;fri"} {
		_, err := ParseRecurrence(spec)
		require.Error(t, err, "spec %q", spec)
	}
}

func TestFormatRecurrence(t *testing.T) {
	t.Parallel()

	require.Equal(t, "once", FormatRecurrence(nil))
	require.Equal(t, "daily", FormatRecurrence([]alarm.Weekday{
		alarm.Monday, alarm.Tuesday, alarm.Wednesday, alarm.Thursday,
		alarm.Friday, alarm.Saturday, alarm.Sunday,
	}))
	require.Equal(t, "mon,fri", FormatRecurrence([]alarm.Weekday{alarm.Monday, alarm.Friday}))
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	hour, minute, err := ParseClock("07:30")
	require.NoError(t, err)
	require.Equal(t, 7, hour)
	require.Equal(t, 30, minute)

	hour, minute, err = ParseClock("0:05")
	require.NoError(t, err)
	require.Equal(t, 0, hour)
	require.Equal(t, 5, minute)

	for _, spec := range []string{"", "7", "24:00", "12:60", "ab:cd"} {
		_, _, err = ParseClock(spec)
		require.Error(t, err, "spec %q", spec)
	}
}
