// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package presence answers "is the user in a call right now?" for the break
// scheduler, currently by asking whether any microphone is capturing.
package presence

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ManuGH/traindaily/internal/metrics"
)

// Signal is the infallible view the schedulers consume.
type Signal interface {
	IsActive(ctx context.Context) bool
}

// Probe is a fallible sensor.
type Probe interface {
	Active(ctx context.Context) (bool, error)
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func(ctx context.Context) (bool, error)

func (f ProbeFunc) Active(ctx context.Context) (bool, error) { return f(ctx) }

// Safe collapses probe errors to "not active". Failures are counted and
// logged at debug level at most once per interval.
type Safe struct {
	probe  Probe
	logger zerolog.Logger
	every  rate.Sometimes
}

// NewSafe wraps probe.
func NewSafe(probe Probe, logger zerolog.Logger) *Safe {
	return &Safe{
		probe:  probe,
		logger: logger,
		every:  rate.Sometimes{First: 1, Interval: 10 * time.Minute},
	}
}

func (s *Safe) IsActive(ctx context.Context) bool {
	active, err := s.probe.Active(ctx)
	if err != nil {
		metrics.IncPresenceProbeError()
		s.every.Do(func() {
			s.logger.Debug().Err(err).Str("event", "presence.probe_failed").Msg("presence probe failed, assuming inactive")
		})
		return false
	}
	return active
}

// Static is a fixed Signal for tests and for platforms without a probe.
type Static bool

func (s Static) IsActive(context.Context) bool { return bool(s) }
