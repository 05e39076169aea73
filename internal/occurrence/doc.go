// Package occurrence computes the next fire instant for an alarm.
//
// The calculator is a pure function of the alarm definition and the supplied
// "now": one-time alarms resolve to today or tomorrow at the configured wall
// clock time, recurring alarms are evaluated as a weekly RRULE over the
// alarm's weekday set. Results are always strictly in the future.
package occurrence
