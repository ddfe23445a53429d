// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package sessions is the single write path for session records, shared by
// the sync relay and the local "log" command.
package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/traindaily/internal/bus"
	"github.com/ManuGH/traindaily/internal/clock"
	"github.com/ManuGH/traindaily/internal/log"
	"github.com/ManuGH/traindaily/internal/metrics"
	"github.com/ManuGH/traindaily/internal/schedule"
	"github.com/ManuGH/traindaily/internal/store"
)

// Document fields added by LogLocal.
const (
	FieldLoggedAt   = "logged_at"
	FieldWeekNumber = "week_number"
)

// ErrReservedExercise is returned when an exercise is named like a document field.
var ErrReservedExercise = errors.New("exercise name is reserved")

// Service saves records and announces every successful write on the bus.
// LogLocal also maintains the first-session marker.
type Service struct {
	store  store.RecordStore
	bus    bus.Bus
	clock  clock.Clock
	logger zerolog.Logger
}

// New builds a Service. b may be nil when nobody listens (CLI).
func New(st store.RecordStore, b bus.Bus, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		store:  st,
		bus:    b,
		clock:  clk,
		logger: log.WithComponent("sessions"),
	}
}

// Save replaces the record at dateKey. source is a metrics label
// (metrics.SourceRelay or metrics.SourceLocal).
func (s *Service) Save(ctx context.Context, source, dateKey string, doc store.Document) error {
	if _, err := schedule.ParseDateKey(dateKey); err != nil {
		return err
	}

	err := s.store.Save(ctx, dateKey, doc)
	metrics.RecordSessionSave(source, err)
	if err != nil {
		return fmt.Errorf("save session %s: %w", dateKey, err)
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, bus.TopicSessions, bus.Event{DateKey: dateKey}); err != nil {
			s.logger.Warn().Err(err).Str(log.FieldDateKey, dateKey).Msg("publish session update failed")
		}
	}

	s.logger.Info().
		Str(log.FieldEvent, "sessions.saved").
		Str(log.FieldDateKey, dateKey).
		Str("source", source).
		Msg("session saved")
	return nil
}

// LogLocal records today's session from exercise name to repetition counts,
// stamping logged_at and the training week number.
func (s *Service) LogLocal(ctx context.Context, exercises map[string][]int) (string, store.Document, error) {
	now := s.clock.Now()
	dateKey := schedule.DateKey(now)

	first, ok, err := s.store.FirstSessionDate(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("read first session date: %w", err)
	}
	if !ok {
		first = dateKey
	}

	doc := make(map[string]any, len(exercises)+2)
	for name, reps := range exercises {
		if name == FieldLoggedAt || name == FieldWeekNumber {
			return "", nil, fmt.Errorf("%w: %q", ErrReservedExercise, name)
		}
		if reps == nil {
			reps = []int{}
		}
		doc[name] = reps
	}
	doc[FieldLoggedAt] = now.Format(time.RFC3339)
	doc[FieldWeekNumber] = schedule.WeekNumber(first, now)

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", nil, fmt.Errorf("encode session: %w", err)
	}
	if err := s.Save(ctx, metrics.SourceLocal, dateKey, raw); err != nil {
		return "", nil, err
	}

	// Only local logs set the marker. Relay uploads replay history in no
	// particular order, so their first key is not the earliest session.
	if !ok {
		if err := s.store.SetFirstSessionDate(ctx, dateKey); err != nil {
			s.logger.Warn().Err(err).
				Str(log.FieldEvent, "sessions.first_marker_failed").
				Str(log.FieldDateKey, dateKey).
				Msg("could not record first session date")
		}
	}
	return dateKey, raw, nil
}
