// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package daemon wires the record store, the sync relay and both schedulers
// and supervises them until shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ManuGH/traindaily/internal/auth"
	"github.com/ManuGH/traindaily/internal/breaks"
	"github.com/ManuGH/traindaily/internal/bus"
	"github.com/ManuGH/traindaily/internal/clock"
	"github.com/ManuGH/traindaily/internal/config"
	"github.com/ManuGH/traindaily/internal/enforce"
	"github.com/ManuGH/traindaily/internal/log"
	"github.com/ManuGH/traindaily/internal/presence"
	"github.com/ManuGH/traindaily/internal/relay"
	"github.com/ManuGH/traindaily/internal/relay/middleware"
	"github.com/ManuGH/traindaily/internal/sessions"
	"github.com/ManuGH/traindaily/internal/store"
	"github.com/ManuGH/traindaily/internal/surface"
)

// Overrides replace OS-facing collaborators; zero values select the
// production implementations.
type Overrides struct {
	Clock    clock.Clock
	Surface  surface.Surface
	Presence presence.Signal
}

// Runtime is the wired set of long-lived components.
type Runtime struct {
	Store    store.RecordStore
	Bus      *bus.MemoryBus
	Sessions *sessions.Service

	Relay   *relay.Server      // nil when the relay is disabled
	Breaks  *breaks.Scheduler  // nil when break reminders are disabled
	Enforce *enforce.Scheduler // nil when the blocker is disabled

	DeviceID string
	Secret   string
}

// OpenStore opens the configured record store.
func OpenStore(ctx context.Context, cfg config.AppConfig) (store.RecordStore, error) {
	return store.Open(ctx, store.Options{
		Backend:   cfg.Store.Backend,
		Dir:       cfg.DataDir,
		RedisAddr: cfg.Store.RedisAddr,
		Logger:    log.WithComponent("store"),
	})
}

// Bootstrap builds the runtime on top of an open store. The store is
// owned by the caller until Bootstrap succeeds.
func Bootstrap(ctx context.Context, cfg config.AppConfig, st store.RecordStore, ov Overrides) (*Runtime, error) {
	if st == nil {
		return nil, ErrMissingStore
	}
	logger := log.WithComponent("daemon")

	deviceID, err := st.DeviceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("device id: %w", err)
	}
	secret, created, err := auth.EnsureSecret(ctx, st)
	if err != nil {
		return nil, fmt.Errorf("auth secret: %w", err)
	}
	if created {
		logger.Info().
			Str(log.FieldEvent, "auth.secret_generated").
			Str(log.FieldDeviceID, deviceID).
			Msg("generated new pairing secret")
	}

	clk := ov.Clock
	if clk == nil {
		clk = clock.Real{}
	}
	b := bus.NewMemoryBus()
	rt := &Runtime{
		Store:    st,
		Bus:      b,
		Sessions: sessions.New(st, b, clk),
		DeviceID: deviceID,
		Secret:   secret,
	}

	if cfg.Relay.Enabled {
		rt.Relay, err = relay.New(relay.Config{
			DeviceID:  deviceID,
			Secret:    secret,
			KeepAlive: cfg.Relay.KeepAlive,
			Stack:     middleware.DefaultStack(),
		}, relay.Deps{Store: st, Sessions: rt.Sessions, Bus: b})
		if err != nil {
			return nil, fmt.Errorf("relay: %w", err)
		}
	}

	surf := ov.Surface
	if surf == nil {
		surf = surface.Instrumented(&surface.CommandSurface{
			ShowCommand: cfg.Surface.ShowCommand,
			HideCommand: cfg.Surface.HideCommand,
			Logger:      log.WithComponent("surface"),
		})
	}

	if cfg.Breaks.Enabled {
		policy, err := cfg.BreakPolicy()
		if err != nil {
			return nil, err
		}
		sig := ov.Presence
		if sig == nil {
			sig = presence.NewSafe(presence.ALSAProbe{}, log.WithComponent("presence"))
		}
		rt.Breaks, err = breaks.NewScheduler(breaks.Deps{Surface: surf, Presence: sig, Clock: clk}, policy)
		if err != nil {
			return nil, err
		}
		rt.Breaks.TickInterval = cfg.Breaks.Tick
	}

	if cfg.Blocker.Enabled {
		days, err := cfg.TrainingDays()
		if err != nil {
			return nil, err
		}
		rt.Enforce, err = enforce.NewScheduler(enforce.Deps{Store: st, Surface: surf, Clock: clk, Bus: b}, days)
		if err != nil {
			return nil, err
		}
		rt.Enforce.TickInterval = cfg.Blocker.Tick
	}

	logRuntime(logger, cfg, rt)
	return rt, nil
}

// Apply pushes reloadable settings into running schedulers.
func (rt *Runtime) Apply(cfg config.AppConfig) error {
	var errs []error
	if rt.Breaks != nil && cfg.Breaks.Enabled {
		if policy, err := cfg.BreakPolicy(); err != nil {
			errs = append(errs, err)
		} else {
			rt.Breaks.SetPolicy(policy)
		}
	}
	if rt.Enforce != nil && cfg.Blocker.Enabled {
		if days, err := cfg.TrainingDays(); err != nil {
			errs = append(errs, err)
		} else {
			rt.Enforce.SetTrainingDays(days)
		}
	}
	return errors.Join(errs...)
}

func logRuntime(logger zerolog.Logger, cfg config.AppConfig, rt *Runtime) {
	logger.Info().
		Str(log.FieldEvent, "daemon.bootstrapped").
		Str(log.FieldDeviceID, rt.DeviceID).
		Str(log.FieldBackend, cfg.Store.Backend).
		Bool("relay", rt.Relay != nil).
		Bool("breaks", rt.Breaks != nil).
		Bool("blocker", rt.Enforce != nil).
		Str("data_dir", cfg.DataDir).
		Msg("runtime ready")
}
