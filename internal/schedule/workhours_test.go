// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(day, hour, minute int) time.Time {
	// February 2026: the 15th is a Sunday, the 16th a Monday.
	return time.Date(2026, 2, day, hour, minute, 0, 0, time.Local)
}

func TestParseClockTime(t *testing.T) {
	c, err := ParseClockTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, ClockTime(9*60+30), c)
	assert.Equal(t, "09:30", c.String())

	_, err = ParseClockTime("9h")
	require.Error(t, err)
}

func TestWorkHoursContains(t *testing.T) {
	day := DefaultWorkHours
	assert.False(t, day.Contains(at(16, 8, 59)))
	assert.True(t, day.Contains(at(16, 9, 0)))
	assert.True(t, day.Contains(at(16, 17, 59)))
	assert.False(t, day.Contains(at(16, 18, 0)))

	night := WorkHours{Start: 22 * 60, End: 6 * 60}
	assert.True(t, night.Contains(at(16, 23, 0)))
	assert.True(t, night.Contains(at(16, 5, 59)))
	assert.False(t, night.Contains(at(16, 12, 0)))

	always := WorkHours{Start: 0, End: 0}
	assert.True(t, always.Contains(at(16, 3, 0)))
}

func TestWorkPolicyOpen(t *testing.T) {
	p := DefaultWorkPolicy
	assert.True(t, p.Open(at(16, 10, 0)), "monday in hours")
	assert.False(t, p.Open(at(15, 10, 0)), "sunday is a rest day")
	assert.False(t, p.Open(at(16, 19, 0)), "monday after hours")
}
