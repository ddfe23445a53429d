// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package schedule

import (
	"fmt"
	"time"
)

// ClockTime is a time of day in minutes after midnight.
type ClockTime int

// ParseClockTime parses "HH:MM" (24h).
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q (want HH:MM): %w", s, err)
	}
	return ClockTime(t.Hour()*60 + t.Minute()), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func clockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// WorkHours is the half-open window [Start, End). A window whose end is
// before its start wraps past midnight; Start == End covers the whole day.
type WorkHours struct {
	Start ClockTime
	End   ClockTime
}

// DefaultWorkHours is 09:00-18:00.
var DefaultWorkHours = WorkHours{Start: 9 * 60, End: 18 * 60}

// Contains reports whether the local time of day of t is inside the window.
func (h WorkHours) Contains(t time.Time) bool {
	c := clockOf(t.In(time.Local))
	switch {
	case h.Start == h.End:
		return true
	case h.Start < h.End:
		return c >= h.Start && c < h.End
	default:
		return c >= h.Start || c < h.End
	}
}

// WorkPolicy gates when break reminders may fire.
type WorkPolicy struct {
	Hours    WorkHours
	RestDays Weekdays
}

// DefaultWorkPolicy is 09:00-18:00 every day but Sunday.
var DefaultWorkPolicy = WorkPolicy{Hours: DefaultWorkHours, RestDays: DefaultRestDays}

// Open reports whether t falls on a work day inside work hours.
func (p WorkPolicy) Open(t time.Time) bool {
	local := t.In(time.Local)
	if p.RestDays.Contains(local.Weekday()) {
		return false
	}
	return p.Hours.Contains(local)
}
