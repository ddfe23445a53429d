// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ManuGH/traindaily/internal/log"
)

// Manager manages the listeners: starting them, handling shutdown.
type Manager interface {
	// Start starts all configured servers and blocks until ctx is done.
	Start(ctx context.Context) error

	// Shutdown gracefully shuts down all servers.
	Shutdown(ctx context.Context) error
}

type manager struct {
	serverCfg ServerConfig
	deps      Deps

	relayServer   *http.Server
	metricsServer *http.Server
	relayAddr     net.Addr
	ready         chan struct{}

	started  bool
	stopping bool
	mu       sync.Mutex

	logger zerolog.Logger
}

// NewManager creates a new daemon manager.
func NewManager(serverCfg ServerConfig, deps Deps) Manager {
	if serverCfg.ShutdownTimeout <= 0 {
		serverCfg.ShutdownTimeout = DefaultServerConfig().ShutdownTimeout
	}
	return &manager{
		serverCfg: serverCfg,
		deps:      deps,
		ready:     make(chan struct{}),
		logger:    deps.Logger.With().Str(log.FieldComponent, "manager").Logger(),
	}
}

// Start binds the listeners and blocks until ctx is cancelled. A relay or
// metrics listener that fails to start is logged and skipped; the rest of
// the daemon keeps running.
func (m *manager) Start(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("start context is nil")
	}

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrManagerStarted
	}
	m.started = true
	m.mu.Unlock()

	m.startRelayServer()
	m.startMetricsServer()
	close(m.ready)

	<-ctx.Done()
	m.logger.Info().Str(log.FieldEvent, "daemon.shutdown_signal").Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.serverCfg.ShutdownTimeout)
	defer cancel()
	return m.Shutdown(shutdownCtx)
}

func (m *manager) startRelayServer() {
	if m.serverCfg.RelayAddr == "" || m.deps.RelayHandler == nil {
		m.logger.Info().Str(log.FieldEvent, "relay.disabled").Msg("sync relay disabled")
		return
	}

	ln, err := net.Listen("tcp", m.serverCfg.RelayAddr)
	if err != nil {
		m.logger.Error().
			Err(err).
			Str(log.FieldEvent, "relay.bind_failed").
			Str("addr", m.serverCfg.RelayAddr).
			Msg("sync relay could not bind; continuing without it")
		return
	}

	srv := &http.Server{
		Handler:           m.deps.RelayHandler,
		ReadHeaderTimeout: m.serverCfg.ReadHeaderTimeout,
		IdleTimeout:       m.serverCfg.IdleTimeout,
	}
	if m.deps.OnRelayShutdown != nil {
		srv.RegisterOnShutdown(m.deps.OnRelayShutdown)
	}

	m.mu.Lock()
	m.relayServer = srv
	m.relayAddr = ln.Addr()
	m.mu.Unlock()

	m.logger.Info().
		Str(log.FieldEvent, "relay.listening").
		Str("addr", ln.Addr().String()).
		Msg("sync relay listening (HTTPS)")

	go func() {
		if err := srv.ServeTLS(ln, m.serverCfg.CertPath, m.serverCfg.KeyPath); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error().
				Err(err).
				Str(log.FieldEvent, "relay.failed").
				Msg("sync relay stopped; schedulers keep running")
		}
	}()
}

func (m *manager) startMetricsServer() {
	if m.serverCfg.MetricsAddr == "" || m.deps.MetricsHandler == nil {
		return
	}

	ln, err := net.Listen("tcp", m.serverCfg.MetricsAddr)
	if err != nil {
		m.logger.Error().
			Err(err).
			Str(log.FieldEvent, "metrics.bind_failed").
			Str("addr", m.serverCfg.MetricsAddr).
			Msg("metrics server could not bind")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.deps.MetricsHandler)
	if m.deps.HealthHandler != nil {
		mux.Handle("/healthz", m.deps.HealthHandler)
	}
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: m.serverCfg.ReadHeaderTimeout,
	}

	m.mu.Lock()
	m.metricsServer = srv
	m.mu.Unlock()

	m.logger.Info().
		Str(log.FieldEvent, "metrics.listening").
		Str("addr", ln.Addr().String()).
		Msg("metrics server listening")

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error().
				Err(err).
				Str(log.FieldEvent, "metrics.failed").
				Msg("metrics server failed")
		}
	}()
}

// RelayAddr returns the bound relay address once Start has bound its
// listeners, or nil if the relay is not running.
func (m *manager) RelayAddr(ctx context.Context) net.Addr {
	select {
	case <-m.ready:
	case <-ctx.Done():
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.relayAddr
}

func (m *manager) Shutdown(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("shutdown context is nil")
	}

	m.mu.Lock()
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	m.stopping = true
	relaySrv, metricsSrv := m.relayServer, m.metricsServer
	m.mu.Unlock()

	m.logger.Info().Msg("shutting down daemon manager")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.serverCfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if relaySrv != nil {
		if err := relaySrv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("relay shutdown: %w", err))
		}
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	m.logger.Info().Str(log.FieldEvent, "daemon.stopped").Msg("daemon manager stopped cleanly")
	return nil
}
