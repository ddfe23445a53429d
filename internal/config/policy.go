// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"

	"github.com/ManuGH/traindaily/internal/breaks"
	"github.com/ManuGH/traindaily/internal/schedule"
)

// BreakPolicy converts the breaks section into a scheduler policy.
func (c AppConfig) BreakPolicy() (breaks.Policy, error) {
	start, err := schedule.ParseClockTime(c.Breaks.WorkStart)
	if err != nil {
		return breaks.Policy{}, fmt.Errorf("workStart: %w", err)
	}
	end, err := schedule.ParseClockTime(c.Breaks.WorkEnd)
	if err != nil {
		return breaks.Policy{}, fmt.Errorf("workEnd: %w", err)
	}
	rest, err := schedule.ParseWeekdays(c.Breaks.RestDays)
	if err != nil {
		return breaks.Policy{}, fmt.Errorf("restDays: %w", err)
	}
	return breaks.Policy{
		Interval: c.Breaks.Interval,
		Defer:    c.Breaks.Defer,
		Work: schedule.WorkPolicy{
			Hours:    schedule.WorkHours{Start: start, End: end},
			RestDays: rest,
		},
	}, nil
}

// TrainingDays parses blocker.trainingDays.
func (c AppConfig) TrainingDays() (schedule.Weekdays, error) {
	return schedule.ParseWeekdays(c.Blocker.TrainingDays)
}
