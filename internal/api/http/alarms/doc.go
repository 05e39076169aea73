// Package alarms exposes the alarm engine over a JSON REST API plus a
// server-sent event stream for live updates.
//
// Domain errors map onto statuses: validation failures are 400s, unknown ids
// are 404s, store failures are 503s, anything else is a 500. Every error body
// carries a machine-readable code next to the human-readable message.
package alarms
