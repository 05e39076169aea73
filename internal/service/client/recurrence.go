package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// weekdayNames maps accepted spellings onto weekdays.
var weekdayNames = map[string]alarm.Weekday{
	"mon": alarm.Monday, "monday": alarm.Monday,
	"tue": alarm.Tuesday, "tuesday": alarm.Tuesday,
	"wed": alarm.Wednesday, "wednesday": alarm.Wednesday,
	"thu": alarm.Thursday, "thursday": alarm.Thursday,
	"fri": alarm.Friday, "friday": alarm.Friday,
	"sat": alarm.Saturday, "saturday": alarm.Saturday,
	"sun": alarm.Sunday, "sunday": alarm.Sunday,
}

// ParseRecurrence turns a --repeat value into a weekday set. It accepts the
// shortcuts "once", "daily", "weekdays" and "weekends", plus comma-separated
// weekday names (short or full) or numbers where 0 is Monday.
func ParseRecurrence(spec string) ([]alarm.Weekday, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))

	switch spec {
	case "", "once":
		return nil, nil
	case "daily":
		return []alarm.Weekday{
			alarm.Monday, alarm.Tuesday, alarm.Wednesday, alarm.Thursday,
			alarm.Friday, alarm.Saturday, alarm.Sunday,
		}, nil
	case "weekdays":
		return []alarm.Weekday{
			alarm.Monday, alarm.Tuesday, alarm.Wednesday, alarm.Thursday, alarm.Friday,
		}, nil
	case "weekends":
		return []alarm.Weekday{alarm.Saturday, alarm.Sunday}, nil
	}

	var days []alarm.Weekday

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if day, ok := weekdayNames[part]; ok {
			days = append(days, day)

			continue
		}

		number, err := strconv.Atoi(part)
		if err != nil || !alarm.Weekday(number).Valid() {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}

		days = append(days, alarm.Weekday(number))
	}

	return alarm.NormalizeRecurrence(days), nil
}

// FormatRecurrence renders a weekday set the way ParseRecurrence reads it.
func FormatRecurrence(days []alarm.Weekday) string {
	switch {
	case len(days) == 0:
		return "once"
	case len(days) == daysPerWeek:
		return "daily"
	}

	names := make([]string, 0, len(days))
	for _, day := range days {
		names = append(names, strings.ToLower(day.String()[:3]))
	}

	return strings.Join(names, ",")
}

// ParseClock parses a "HH:MM" time of day.
func ParseClock(spec string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(spec), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", spec)
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour %q", parts[0])
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute %q", parts[1])
	}

	return hour, minute, nil
}

const daysPerWeek = 7
