// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package schedule holds the calendar rules shared by the schedulers and the
// session service: date keys, training days, work hours and week numbers.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateKeyLayout is the layout of a session date key (YYYY-MM-DD).
const DateKeyLayout = "2006-01-02"

// ErrInvalidDateKey is returned for keys that are not a real calendar date.
var ErrInvalidDateKey = errors.New("invalid date key")

// DateKey returns the date key of t in the process-local time zone.
func DateKey(t time.Time) string {
	return t.In(time.Local).Format(DateKeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD key as local midnight. Keys that do not
// round-trip (e.g. "2026-2-16" or "2026-02-30") are rejected.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateKeyLayout, key, time.Local)
	if err != nil || t.Format(DateKeyLayout) != key {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	return t, nil
}

// ValidDateKey reports whether key is a well-formed date key.
func ValidDateKey(key string) bool {
	_, err := ParseDateKey(key)
	return err == nil
}

// Weekdays is a set of days of the week.
type Weekdays uint8

// NewWeekdays builds a set from the given days.
func NewWeekdays(days ...time.Weekday) Weekdays {
	var w Weekdays
	for _, d := range days {
		w |= 1 << uint(d)
	}
	return w
}

// DefaultTrainingDays is Monday, Wednesday and Friday.
var DefaultTrainingDays = NewWeekdays(time.Monday, time.Wednesday, time.Friday)

// DefaultRestDays is Sunday.
var DefaultRestDays = NewWeekdays(time.Sunday)

// Contains reports whether d is in the set.
func (w Weekdays) Contains(d time.Weekday) bool {
	return w&(1<<uint(d)) != 0
}

// Days returns the members in Sunday-first order.
func (w Weekdays) Days() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

func (w Weekdays) String() string {
	return strings.Join(WeekdayNames(w), ",")
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekdays parses day names ("monday", "Mon", ...) into a set.
func ParseWeekdays(names []string) (Weekdays, error) {
	var w Weekdays
	for _, n := range names {
		d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, fmt.Errorf("unknown weekday %q", n)
		}
		w |= NewWeekdays(d)
	}
	return w, nil
}

// WeekdayNames renders a set back to lowercase names, e.g. for config dumps.
func WeekdayNames(w Weekdays) []string {
	out := make([]string, 0, 7)
	for _, d := range w.Days() {
		out = append(out, strings.ToLower(d.String()))
	}
	return out
}

// WeekNumber returns the 1-based training week of now relative to the first
// logged session. An unknown or future first session yields week 1.
func WeekNumber(firstSession string, now time.Time) int {
	if firstSession == "" {
		return 1
	}
	first, err := ParseDateKey(firstSession)
	if err != nil {
		return 1
	}
	days := daysBetween(first, now)
	weeks := days / 7
	if weeks < 0 {
		return 1
	}
	return weeks + 1
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.In(time.Local).Date()
	by, bm, bd := b.In(time.Local).Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}
