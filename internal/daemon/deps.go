// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ServerConfig configures the listeners owned by the Manager.
type ServerConfig struct {
	// RelayAddr is the HTTPS listen address; empty disables the relay.
	RelayAddr string
	CertPath  string
	KeyPath   string

	// MetricsAddr is the plain HTTP Prometheus listener; empty disables it.
	MetricsAddr string

	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

// DefaultServerConfig returns timeouts suitable for long-lived streams:
// there is no write timeout.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		ShutdownTimeout:   10 * time.Second,
	}
}

// Deps contains dependencies required by the daemon Manager.
type Deps struct {
	Logger zerolog.Logger

	// RelayHandler serves the sync relay.
	RelayHandler http.Handler

	// OnRelayShutdown runs when the relay server begins shutting down,
	// typically to end open event streams.
	OnRelayShutdown func()

	// MetricsHandler serves Prometheus metrics.
	MetricsHandler http.Handler

	// HealthHandler is served next to the metrics at /healthz.
	HealthHandler http.Handler
}
