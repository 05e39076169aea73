package occurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// TestNext_OneTime covers the today/tomorrow branches for one-time alarms.
func TestNext_OneTime(t *testing.T) {
	t.Parallel()

	a := &alarm.Alarm{ID: "one", Hour: 8, Minute: 30}

	// Already passed today: pushes to tomorrow.
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	next, err := Next(a, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC), next)

	// Still ahead today: fires today.
	now = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	next, err = Next(a, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC), next)
}

// TestNext_OneTime_ExactInstant treats now == candidate as already passed.
func TestNext_OneTime_ExactInstant(t *testing.T) {
	t.Parallel()

	a := &alarm.Alarm{ID: "one", Hour: 8, Minute: 30}
	now := time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC)

	next, err := Next(a, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC), next)
}

// TestNext_Recurring_NextWeek finds next Monday from a Wednesday.
func TestNext_Recurring_NextWeek(t *testing.T) {
	t.Parallel()

	a := &alarm.Alarm{ID: "mon", Hour: 7, Minute: 0, Recurrence: []alarm.Weekday{alarm.Monday}}

	// 2024-01-03 is a Wednesday; next Monday is 2024-01-08.
	now := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)

	next, err := Next(a, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 8, 7, 0, 0, 0, time.UTC), next)
	require.Equal(t, time.Monday, next.Weekday())
}

// TestNext_Recurring_SameDay fires later today when the weekday matches and
// the time has not passed yet.
func TestNext_Recurring_SameDay(t *testing.T) {
	t.Parallel()

	// 2024-01-03 is a Wednesday.
	a := &alarm.Alarm{ID: "wed", Hour: 22, Minute: 15, Recurrence: []alarm.Weekday{alarm.Wednesday}}
	now := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)

	next, err := Next(a, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 3, 22, 15, 0, 0, time.UTC), next)
}

// TestNext_Recurring_ExactInstant pushes a full week when now is the instant.
func TestNext_Recurring_ExactInstant(t *testing.T) {
	t.Parallel()

	// 2024-01-01 is a Monday.
	a := &alarm.Alarm{ID: "mon", Hour: 7, Minute: 0, Recurrence: []alarm.Weekday{alarm.Monday}}
	now := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)

	next, err := Next(a, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 8, 7, 0, 0, 0, time.UTC), next)
}

// TestNext_Bounds checks the strictly-future and horizon properties for a
// spread of "now" values across a week.
func TestNext_Bounds(t *testing.T) {
	t.Parallel()

	recurring := &alarm.Alarm{
		ID:         "weekend",
		Hour:       9,
		Minute:     5,
		Recurrence: []alarm.Weekday{alarm.Saturday, alarm.Sunday},
	}
	oneTime := &alarm.Alarm{ID: "once", Hour: 9, Minute: 5}

	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for offset := 0; offset < 7*24; offset++ {
		now := base.Add(time.Duration(offset) * time.Hour).Add(17 * time.Second)

		next, err := Next(recurring, now)
		require.NoError(t, err)
		require.True(t, next.After(now))
		require.LessOrEqual(t, next.Sub(now), 7*24*time.Hour)

		next, err = Next(oneTime, now)
		require.NoError(t, err)
		require.True(t, next.After(now))
		require.LessOrEqual(t, next.Sub(now), 24*time.Hour+time.Minute)
	}
}

// TestNext_Recurring_AllDays behaves like a daily alarm.
func TestNext_Recurring_AllDays(t *testing.T) {
	t.Parallel()

	a := &alarm.Alarm{
		ID:     "daily",
		Hour:   6,
		Minute: 45,
		Recurrence: []alarm.Weekday{
			alarm.Monday, alarm.Tuesday, alarm.Wednesday, alarm.Thursday,
			alarm.Friday, alarm.Saturday, alarm.Sunday,
		},
	}

	now := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)

	next, err := Next(a, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 2, 6, 45, 0, 0, time.UTC), next)
}

// TestNext_InvalidWeekday surfaces the invariant violation loudly.
func TestNext_InvalidWeekday(t *testing.T) {
	t.Parallel()

	a := &alarm.Alarm{ID: "broken", Hour: 7, Minute: 0, Recurrence: []alarm.Weekday{42}}

	_, err := Next(a, time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC))
	require.ErrorIs(t, err, alarm.ErrInvariantViolation)
}
