// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package breaks reminds the user to get up and move every interval during
// work hours, holding the reminder back while they are on a call.
package breaks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/traindaily/internal/clock"
	"github.com/ManuGH/traindaily/internal/log"
	"github.com/ManuGH/traindaily/internal/metrics"
	"github.com/ManuGH/traindaily/internal/presence"
	"github.com/ManuGH/traindaily/internal/schedule"
	"github.com/ManuGH/traindaily/internal/surface"
)

// State of the break scheduler.
type State string

const (
	Idle     State = "idle"
	Deferred State = "deferred"
)

const (
	DefaultInterval = 30 * time.Minute
	DefaultDefer    = 5 * time.Minute
	DefaultTick     = time.Minute
)

// Policy is the replaceable part of the configuration.
type Policy struct {
	Interval time.Duration
	Defer    time.Duration
	Work     schedule.WorkPolicy
}

// DefaultPolicy is every 30 minutes, 5 minutes of deferral, 09:00-18:00,
// Sunday off.
func DefaultPolicy() Policy {
	return Policy{
		Interval: DefaultInterval,
		Defer:    DefaultDefer,
		Work:     schedule.DefaultWorkPolicy,
	}
}

// Snapshot is a copy of the scheduler's state.
type Snapshot struct {
	State         State
	LastBreak     time.Time
	DeferredUntil time.Time // zero unless Deferred
}

// Deps are the scheduler's collaborators.
type Deps struct {
	Surface  surface.Surface
	Presence presence.Signal
	Clock    clock.Clock
}

var (
	ErrMissingSurface  = errors.New("breaks: surface is required")
	ErrMissingPresence = errors.New("breaks: presence signal is required")
)

// Scheduler owns the break state machine. Tick is driven by a single
// goroutine (Run); SetPolicy and Snapshot may be called concurrently.
type Scheduler struct {
	deps   Deps
	logger zerolog.Logger

	// TickInterval is how often Run evaluates Tick.
	TickInterval time.Duration

	mu            sync.Mutex
	policy        Policy
	lastBreak     time.Time
	deferredUntil time.Time
}

// NewScheduler starts in Idle with lastBreak = now.
func NewScheduler(deps Deps, policy Policy) (*Scheduler, error) {
	if deps.Surface == nil {
		return nil, ErrMissingSurface
	}
	if deps.Presence == nil {
		return nil, ErrMissingPresence
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	return &Scheduler{
		deps:         deps,
		logger:       log.WithComponent("breaks"),
		TickInterval: DefaultTick,
		policy:       policy,
		lastBreak:    deps.Clock.Now(),
	}, nil
}

// SetPolicy replaces the policy; it applies from the next tick.
func (s *Scheduler) SetPolicy(p Policy) {
	s.mu.Lock()
	s.policy = p
	s.mu.Unlock()
	s.logger.Info().
		Str(log.FieldEvent, "breaks.policy_updated").
		Dur("interval", p.Interval).
		Dur("defer", p.Defer).
		Msg("break policy updated")
}

func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Scheduler) snapshotLocked() Snapshot {
	snap := Snapshot{State: Idle, LastBreak: s.lastBreak}
	if !s.deferredUntil.IsZero() {
		snap.State = Deferred
		snap.DeferredUntil = s.deferredUntil
	}
	return snap
}

// Tick evaluates the state machine once and reports whether the break
// surface was requested. At most one show happens per tick no matter how
// many intervals elapsed.
func (s *Scheduler) Tick(ctx context.Context) bool {
	now := s.deps.Clock.Now()

	s.mu.Lock()
	policy := s.policy
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if !policy.Work.Open(now) {
		return false
	}

	switch snap.State {
	case Deferred:
		if now.Before(snap.DeferredUntil) {
			return false
		}
	case Idle:
		if now.Sub(snap.LastBreak) < policy.Interval {
			return false
		}
	}

	if s.deps.Presence.IsActive(ctx) {
		until := now.Add(policy.Defer)
		s.mu.Lock()
		s.deferredUntil = until
		s.mu.Unlock()
		metrics.IncBreakDefer()
		s.logger.Info().
			Str(log.FieldEvent, "breaks.deferred").
			Str(log.FieldOldState, string(snap.State)).
			Str(log.FieldNewState, string(Deferred)).
			Time("deferred_until", until).
			Msg("microphone in use, break deferred")
		return false
	}

	err := s.deps.Surface.Show(ctx, surface.Break)

	// lastBreak advances even when the surface failed, so a broken display
	// does not turn into a show attempt every tick.
	s.mu.Lock()
	s.lastBreak = now
	s.deferredUntil = time.Time{}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).
			Str(log.FieldEvent, "breaks.show_failed").
			Str(log.FieldSurface, surface.Break).
			Msg("could not show break surface")
		return true
	}
	s.logger.Info().
		Str(log.FieldEvent, "breaks.shown").
		Str(log.FieldSurface, surface.Break).
		Str(log.FieldOldState, string(snap.State)).
		Str(log.FieldNewState, string(Idle)).
		Msg("break reminder shown")
	return true
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.TickInterval
	if interval <= 0 {
		interval = DefaultTick
	}
	s.logger.Info().
		Str(log.FieldEvent, "breaks.started").
		Dur("tick", interval).
		Msg("break scheduler started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Str(log.FieldEvent, "breaks.stopped").Msg("break scheduler stopping")
			return nil
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}
