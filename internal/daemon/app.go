// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/traindaily/internal/auth"
	"github.com/ManuGH/traindaily/internal/config"
	"github.com/ManuGH/traindaily/internal/health"
	"github.com/ManuGH/traindaily/internal/log"
	"github.com/ManuGH/traindaily/internal/tls"
)

// App owns the long-lived runtime lifecycle (schedulers, reload wiring)
// and delegates listener management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.ConfigHolder
	rt           *Runtime
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator. cfgHolder may be nil.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.ConfigHolder, rt *Runtime) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		rt:           rt,
		reloadSignal: syscall.SIGHUP,
	}
}

// NewManagerFor provisions the relay certificate and builds the Manager
// for cfg. A certificate failure disables the relay only.
func NewManagerFor(cfg config.AppConfig, rt *Runtime) Manager {
	logger := log.WithComponent("daemon")
	serverCfg := DefaultServerConfig()
	serverCfg.MetricsAddr = cfg.Metrics.ListenAddr
	deps := Deps{
		Logger:         logger,
		MetricsHandler: promhttp.Handler(),
		HealthHandler:  newHealthManager(cfg, rt),
	}

	if rt.Relay != nil {
		certPath, keyPath, err := tls.EnsureCertificates(tls.Config{
			CertPath: cfg.Relay.CertPath,
			KeyPath:  cfg.Relay.KeyPath,
			Logger:   log.WithComponent("tls"),
		})
		if err != nil {
			logger.Error().
				Err(err).
				Str(log.FieldEvent, "relay.certificate_failed").
				Msg("TLS certificate unavailable; sync relay disabled")
		} else {
			serverCfg.RelayAddr = cfg.Relay.ListenAddr
			serverCfg.CertPath = certPath
			serverCfg.KeyPath = keyPath
			deps.RelayHandler = rt.Relay.Handler()
			deps.OnRelayShutdown = rt.Relay.CloseStreams
		}
	}
	return NewManager(serverCfg, deps)
}

func newHealthManager(cfg config.AppConfig, rt *Runtime) *health.Manager {
	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.ErrorChecker("store", func(ctx context.Context) error {
		_, _, err := rt.Store.Setting(ctx, auth.SettingKey)
		return err
	}))
	if rt.Enforce != nil {
		hm.RegisterChecker(health.CheckerFunc{CheckName: "blocker", Fn: func(context.Context) health.CheckResult {
			return health.CheckResult{Status: health.StatusHealthy, Message: string(rt.Enforce.State())}
		}})
	}
	return hm
}

// RelayAddr blocks until the listeners are bound and returns the relay's
// address, or nil when the relay is not running.
func (a *App) RelayAddr(ctx context.Context) net.Addr {
	if m, ok := a.manager.(interface{ RelayAddr(context.Context) net.Addr }); ok {
		return m.RelayAddr(ctx)
	}
	return nil
}

// Run starts all owned subsystems and blocks until ctx is cancelled or a
// fatal error occurs. The store is closed on return.
func (a *App) Run(ctx context.Context) (err error) {
	if a.manager == nil {
		return ErrMissingManager
	}
	if a.rt == nil || a.rt.Store == nil {
		return ErrMissingStore
	}
	defer func() {
		if cerr := a.rt.Store.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close store: %w", cerr))
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	// Config watcher is best-effort: startup does not fail without it.
	if a.cfgHolder != nil {
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str(log.FieldEvent, "config.watcher_start_failed").Msg("failed to start config watcher")
		}

		applyCh := make(chan config.AppConfig, 1)
		a.cfgHolder.RegisterListener(applyCh)
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					if err := a.rt.Apply(cfg); err != nil {
						a.logger.Warn().Err(err).Str(log.FieldEvent, "config.apply_failed").Msg("reloaded config not applied")
					}
				}
			}
		})
	}

	if a.cfgHolder != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str(log.FieldEvent, "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")
					if err := a.cfgHolder.Reload(ctx); err != nil {
						a.logger.Warn().
							Err(err).
							Str(log.FieldEvent, "config.reload_failed").
							Msg("config reload failed")
					}
				}
			}
		})
	}

	if a.rt.Breaks != nil {
		g.Go(func() error { return a.rt.Breaks.Run(ctx) })
	}
	if a.rt.Enforce != nil {
		g.Go(func() error { return a.rt.Enforce.Run(ctx) })
	}

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.WithoutCancel(ctx))
		}
		return err
	})

	return g.Wait()
}
