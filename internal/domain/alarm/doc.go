// Package alarm contains core domain types for the alarm scheduling engine.
//
// It defines the Alarm entity (time of day plus an optional weekly recurrence
// set), the Monday-based Weekday type, normalization and validation rules,
// and the error taxonomy shared by the registry, scheduler and transports.
package alarm
