// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package enforce keeps the full-screen blocker up on training days until
// today's session has been logged.
package enforce

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/traindaily/internal/bus"
	"github.com/ManuGH/traindaily/internal/clock"
	"github.com/ManuGH/traindaily/internal/log"
	"github.com/ManuGH/traindaily/internal/metrics"
	"github.com/ManuGH/traindaily/internal/schedule"
	"github.com/ManuGH/traindaily/internal/store"
	"github.com/ManuGH/traindaily/internal/surface"
)

// State of the enforcement scheduler.
type State string

const (
	Open     State = "open"
	Blocking State = "blocking"
)

// DefaultTick is how often the predicate is re-evaluated.
const DefaultTick = 10 * time.Second

var (
	ErrMissingStore   = errors.New("enforce: store is required")
	ErrMissingSurface = errors.New("enforce: surface is required")
)

// Deps are the scheduler's collaborators. Bus is optional: when set, a
// notification for today's key triggers an immediate evaluation.
type Deps struct {
	Store   store.RecordStore
	Surface surface.Surface
	Clock   clock.Clock
	Bus     bus.Bus
}

// Scheduler owns the blocker state machine.
type Scheduler struct {
	deps   Deps
	logger zerolog.Logger

	// TickInterval is how often Run evaluates Tick.
	TickInterval time.Duration

	// tickMu serializes Tick between the ticker and the bus fast path.
	tickMu sync.Mutex

	mu           sync.Mutex
	trainingDays schedule.Weekdays
	shown        bool
}

func NewScheduler(deps Deps, trainingDays schedule.Weekdays) (*Scheduler, error) {
	if deps.Store == nil {
		return nil, ErrMissingStore
	}
	if deps.Surface == nil {
		return nil, ErrMissingSurface
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	return &Scheduler{
		deps:         deps,
		logger:       log.WithComponent("enforce"),
		TickInterval: DefaultTick,
		trainingDays: trainingDays,
	}, nil
}

// SetTrainingDays replaces the training-day set; it applies from the next tick.
func (s *Scheduler) SetTrainingDays(days schedule.Weekdays) {
	s.mu.Lock()
	s.trainingDays = days
	s.mu.Unlock()
	s.logger.Info().
		Str(log.FieldEvent, "enforce.policy_updated").
		Str("training_days", days.String()).
		Msg("training days updated")
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shown {
		return Blocking
	}
	return Open
}

// ShouldBlock reports whether now is a training day without a session.
func (s *Scheduler) ShouldBlock(ctx context.Context, now time.Time) (bool, error) {
	s.mu.Lock()
	days := s.trainingDays
	s.mu.Unlock()

	if !days.Contains(now.In(time.Local).Weekday()) {
		return false, nil
	}
	key := schedule.DateKey(now)
	has, err := s.deps.Store.Has(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check session %s: %w", key, err)
	}
	return !has, nil
}

// Tick evaluates the predicate once and shows or hides the blocker on a
// transition. Store errors skip the tick; display errors leave the state
// unchanged so the next tick retries.
func (s *Scheduler) Tick(ctx context.Context) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	now := s.deps.Clock.Now()
	block, err := s.ShouldBlock(ctx, now)
	if err != nil {
		metrics.IncSkippedTick("enforce", "store")
		s.logger.Error().Err(err).
			Str(log.FieldEvent, "enforce.tick_skipped").
			Msg("record store unavailable, skipping tick")
		return
	}

	from := s.State()
	switch {
	case block && from == Open:
		if err := s.deps.Surface.Show(ctx, surface.Blocker); err != nil {
			s.logger.Error().Err(err).
				Str(log.FieldEvent, "enforce.show_failed").
				Str(log.FieldSurface, surface.Blocker).
				Msg("could not show blocker, retrying next tick")
			return
		}
		s.transition(from, Blocking, now)
	case !block && from == Blocking:
		if err := s.deps.Surface.Hide(ctx, surface.Blocker); err != nil {
			s.logger.Error().Err(err).
				Str(log.FieldEvent, "enforce.hide_failed").
				Str(log.FieldSurface, surface.Blocker).
				Msg("could not hide blocker, retrying next tick")
			return
		}
		s.transition(from, Open, now)
	}
}

func (s *Scheduler) transition(from, to State, now time.Time) {
	s.mu.Lock()
	s.shown = to == Blocking
	s.mu.Unlock()
	metrics.SetBlockerActive(to == Blocking)

	event := "enforce.block_shown"
	if to == Open {
		event = "enforce.block_cleared"
	}
	s.logger.Info().
		Str(log.FieldEvent, event).
		Str(log.FieldOldState, string(from)).
		Str(log.FieldNewState, string(to)).
		Str(log.FieldDateKey, schedule.DateKey(now)).
		Msg("blocker state changed")
}

// Run evaluates once immediately, then every TickInterval and on every bus
// notification for today's key, until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.TickInterval
	if interval <= 0 {
		interval = DefaultTick
	}

	var updates <-chan bus.Event
	if s.deps.Bus != nil {
		sub, err := s.deps.Bus.Subscribe(ctx, bus.TopicSessions)
		if err != nil {
			return fmt.Errorf("enforce: subscribe: %w", err)
		}
		defer func() { _ = sub.Close() }()
		updates = sub.C()
	}

	s.logger.Info().
		Str(log.FieldEvent, "enforce.started").
		Dur("tick", interval).
		Msg("enforcement scheduler started")

	s.Tick(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str(log.FieldEvent, "enforce.stopped").Msg("enforcement scheduler stopping")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		case ev, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			if ev.DateKey == schedule.DateKey(s.deps.Clock.Now()) {
				s.Tick(ctx)
			}
		}
	}
}
