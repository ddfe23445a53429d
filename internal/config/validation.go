// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ManuGH/traindaily/internal/store"
)

// Validate checks the whole configuration and reports every problem at once.
func Validate(cfg AppConfig) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if cfg.DataDir == "" && cfg.Store.Backend != store.BackendMemory {
		add("dataDir: required")
	}
	if cfg.LogLevel != "" {
		if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
			add("logLevel: %w", err)
		}
	}
	if cfg.Log.MaxSizeMB < 0 || cfg.Log.MaxBackups < 0 {
		add("log: maxSizeMB and maxBackups must not be negative")
	}

	switch cfg.Store.Backend {
	case store.BackendSqlite, store.BackendBadger, store.BackendMemory:
	case store.BackendRedis:
		if cfg.Store.RedisAddr == "" {
			add("store.redisAddr: required for the redis backend")
		}
	default:
		add("store.backend: unknown backend %q", cfg.Store.Backend)
	}

	if cfg.Relay.Enabled {
		if err := validateListenAddr(cfg.Relay.ListenAddr); err != nil {
			add("relay.listenAddr: %w", err)
		}
		if cfg.Relay.KeepAlive <= 0 {
			add("relay.keepAlive: must be positive")
		}
	}

	if cfg.Breaks.Enabled {
		if cfg.Breaks.Interval <= 0 {
			add("breaks.interval: must be positive")
		}
		if cfg.Breaks.Defer <= 0 {
			add("breaks.defer: must be positive")
		}
		if cfg.Breaks.Tick <= 0 {
			add("breaks.tick: must be positive")
		}
		if _, err := cfg.BreakPolicy(); err != nil {
			add("breaks: %w", err)
		}
	}

	if cfg.Blocker.Enabled {
		if cfg.Blocker.Tick <= 0 {
			add("blocker.tick: must be positive")
		}
		if _, err := cfg.TrainingDays(); err != nil {
			add("blocker.trainingDays: %w", err)
		}
	}

	if cfg.Metrics.ListenAddr != "" {
		if err := validateListenAddr(cfg.Metrics.ListenAddr); err != nil {
			add("metrics.listenAddr: %w", err)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func validateListenAddr(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}
