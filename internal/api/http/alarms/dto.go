package alarms

import (
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// listResponse wraps the alarm collection.
type listResponse struct {
	Alarms []*alarm.Alarm `json:"alarms"`
}

// createRequest carries the fields of a new alarm.
type createRequest struct {
	Label      string          `json:"label"`
	Hour       int             `json:"hour"`
	Minute     int             `json:"minute"`
	Enabled    bool            `json:"enabled"`
	Recurrence []alarm.Weekday `json:"recurrence"`
}

// updateRequest carries optional field changes; absent fields stay untouched.
type updateRequest struct {
	Label      *string          `json:"label"`
	Hour       *int             `json:"hour"`
	Minute     *int             `json:"minute"`
	Enabled    *bool            `json:"enabled"`
	Recurrence *[]alarm.Weekday `json:"recurrence"`
}

// setEnabledRequest toggles an alarm.
type setEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// snoozeRequest creates a one-time alarm the given number of minutes from now.
type snoozeRequest struct {
	Label   string `json:"label"`
	Minutes int    `json:"minutes"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
