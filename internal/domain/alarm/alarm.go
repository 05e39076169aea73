package alarm

import (
	"fmt"
	"slices"
	"time"
)

// DefaultLabel is substituted for an empty alarm label.
const DefaultLabel = "Alarm"

// Weekday is a day of the week as stored in an alarm's recurrence set.
// Unlike time.Weekday, the week starts on Monday (0) and ends on Sunday (6).
type Weekday int

// Weekday values, Monday first.
const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// weekdayNames maps Weekday values to short lowercase names.
var weekdayNames = [...]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// Valid reports whether the value is within the Monday..Sunday range.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// Time converts the Monday-based weekday to the Sunday-based time.Weekday.
func (d Weekday) Time() time.Weekday {
	return time.Weekday((int(d) + 1) % 7)
}

// String returns the short English name of the weekday.
func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}

	return weekdayNames[d]
}

// WeekdayFromTime converts a time.Weekday to the Monday-based Weekday.
func WeekdayFromTime(d time.Weekday) Weekday {
	return Weekday((int(d) + 6) % 7)
}

// Alarm is a persisted time-of-day trigger with an optional weekly recurrence.
// An empty recurrence set means the alarm fires once and is then disabled.
type Alarm struct {
	// ID is a generated identifier, stable for the lifetime of the alarm.
	ID string `json:"id"`
	// Label is free text shown when the alarm fires.
	Label string `json:"label"`
	// Hour of the day the alarm fires, 0..23.
	Hour int `json:"hour"`
	// Minute of the hour the alarm fires, 0..59.
	Minute int `json:"minute"`
	// Enabled controls whether a timer is armed for the alarm.
	Enabled bool `json:"enabled"`
	// Recurrence lists the weekdays on which the alarm repeats.
	Recurrence []Weekday `json:"recurrence"`
}

// IsRecurring reports whether the alarm repeats on at least one weekday.
func (a *Alarm) IsRecurring() bool {
	return len(a.Recurrence) > 0
}

// Clone returns a deep copy of the alarm to avoid leaking internal references.
func (a *Alarm) Clone() *Alarm {
	if a == nil {
		return nil
	}

	cloned := *a
	cloned.Recurrence = slices.Clone(a.Recurrence)

	return &cloned
}

// Normalize applies the label default and canonicalizes the recurrence set
// (sorted, deduplicated, never nil). It does not validate field ranges.
func (a *Alarm) Normalize() {
	if a.Label == "" {
		a.Label = DefaultLabel
	}

	a.Recurrence = NormalizeRecurrence(a.Recurrence)
}

// Validate checks field ranges and the recurrence set.
func (a *Alarm) Validate() error {
	if a.Hour < 0 || a.Hour > 23 {
		return &ValidationError{Field: "hour", Reason: fmt.Sprintf("must be within 0..23, got %d", a.Hour)}
	}

	if a.Minute < 0 || a.Minute > 59 {
		return &ValidationError{Field: "minute", Reason: fmt.Sprintf("must be within 0..59, got %d", a.Minute)}
	}

	for _, day := range a.Recurrence {
		if !day.Valid() {
			return &ValidationError{
				Field:  "recurrence",
				Reason: fmt.Sprintf("weekday must be within 0..6, got %d", int(day)),
			}
		}
	}

	return nil
}

// NormalizeRecurrence returns a sorted, deduplicated copy of the weekday set.
// The result is never nil so the JSON form is always an array.
func NormalizeRecurrence(days []Weekday) []Weekday {
	normalized := make([]Weekday, 0, len(days))
	normalized = append(normalized, days...)
	slices.Sort(normalized)

	return slices.Compact(normalized)
}
