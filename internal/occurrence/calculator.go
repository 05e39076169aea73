package occurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// rruleWeekdays maps the Monday-based domain weekdays to rrule BYDAY values.
var rruleWeekdays = [...]rrule.Weekday{
	rrule.MO,
	rrule.TU,
	rrule.WE,
	rrule.TH,
	rrule.FR,
	rrule.SA,
	rrule.SU,
}

// Next computes the next instant strictly after now at which the alarm fires.
// It is pure and deterministic given now; the result is always in the future.
// An instant exactly equal to now counts as already passed, so a timer is
// never armed with a zero or negative delay.
//
// For a valid alarm Next cannot fail; an error always wraps
// alarm.ErrInvariantViolation and indicates a defect in the engine.
func Next(a *alarm.Alarm, now time.Time) (time.Time, error) {
	if !a.IsRecurring() {
		return nextOneTime(a, now), nil
	}

	return nextRecurring(a, now)
}

// nextOneTime returns today at the alarm's wall-clock time, or tomorrow when
// that has already passed. Building the candidate with time.Date keeps the
// requested hour and minute across DST transitions.
func nextOneTime(a *alarm.Alarm, now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), a.Hour, a.Minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = time.Date(now.Year(), now.Month(), now.Day()+1, a.Hour, a.Minute, 0, 0, now.Location())
	}

	return candidate
}

// nextRecurring evaluates the weekly recurrence set as an RRULE and returns
// the first occurrence strictly after now.
func nextRecurring(a *alarm.Alarm, now time.Time) (time.Time, error) {
	byWeekday := make([]rrule.Weekday, 0, len(a.Recurrence))
	for _, day := range a.Recurrence {
		if !day.Valid() {
			return time.Time{}, fmt.Errorf("%w: weekday %d out of range for alarm %s",
				alarm.ErrInvariantViolation, int(day), a.ID)
		}

		byWeekday = append(byWeekday, rruleWeekdays[day])
	}

	// Start the rule a full week back so today's occurrence is still
	// generated and the strictly-after filter below can consider it.
	start := time.Date(now.Year(), now.Month(), now.Day()-daysPerWeek, a.Hour, a.Minute, 0, 0, now.Location())

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: byWeekday,
		Dtstart:   start,
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: build recurrence rule for alarm %s: %v",
			alarm.ErrInvariantViolation, a.ID, err)
	}

	next := rule.After(now, false)
	if next.IsZero() {
		// A non-empty weekly recurrence always has a future occurrence;
		// reaching this branch means the rule evaluation is broken.
		return time.Time{}, fmt.Errorf("%w: no occurrence within a week for alarm %s",
			alarm.ErrInvariantViolation, a.ID)
	}

	return next, nil
}

// daysPerWeek is the recurrence horizon: a weekly rule repeats within 7 days.
const daysPerWeek = 7
