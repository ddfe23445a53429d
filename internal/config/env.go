// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/traindaily/internal/log"
)

// Environment variables read by the loader.
const (
	EnvDataDir       = "TRAINDAILY_DATA"
	EnvLogLevel      = "TRAINDAILY_LOG_LEVEL"
	EnvLogFile       = "TRAINDAILY_LOG_FILE"
	EnvStoreBackend  = "TRAINDAILY_STORE"
	EnvRedisAddr     = "TRAINDAILY_REDIS_ADDR"
	EnvListenAddr    = "TRAINDAILY_LISTEN"
	EnvRelayEnabled  = "TRAINDAILY_RELAY_ENABLED"
	EnvBreakInterval = "TRAINDAILY_BREAK_INTERVAL"
	EnvBreakDefer    = "TRAINDAILY_BREAK_DEFER"
	EnvMetricsListen = "TRAINDAILY_METRICS_LISTEN"
)

// ParseString reads a string from environment variable or returns default value.
// It logs the source (environment or default).
func ParseString(key, defaultValue string) string {
	return parseStringWithLogger(log.WithComponent("config"), key, defaultValue)
}

func parseStringWithLogger(logger zerolog.Logger, key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		logger.Debug().
			Str("key", key).
			Str("default", defaultValue).
			Str("source", "default").
			Msg("using default value")
		return defaultValue
	}
	lowerKey := strings.ToLower(key)
	if strings.Contains(lowerKey, "secret") || strings.Contains(lowerKey, "token") {
		logger.Debug().
			Str("key", key).
			Str("source", "environment").
			Bool("sensitive", true).
			Msg("using environment variable")
		return value
	}
	logger.Debug().
		Str("key", key).
		Str("value", value).
		Str("source", "environment").
		Msg("using environment variable")
	return value
}

// ParseInt reads an integer from environment variable or returns default value.
// It falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().
			Str("key", key).
			Int("default", defaultValue).
			Str("source", "default").
			Msg("using default value")
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Int("value", i).
		Str("source", "environment").
		Msg("using environment variable")
	return i
}

// ParseDuration reads a duration in Go duration format (e.g. "5s").
// It falls back to default on parse errors or empty variables and logs the choice.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().
			Str("key", key).
			Dur("default", defaultValue).
			Str("source", "default").
			Msg("using default value")
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Dur("value", d).
		Str("source", "environment").
		Msg("using environment variable")
	return d
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().
			Str("key", key).
			Bool("default", defaultValue).
			Str("source", "default").
			Msg("using default value")
		return defaultValue
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Bool("default", defaultValue).
			Msg("invalid boolean in environment variable, using default")
		return defaultValue
	}
}

func mergeEnv(cfg *AppConfig) {
	cfg.DataDir = ParseString(EnvDataDir, cfg.DataDir)
	cfg.LogLevel = ParseString(EnvLogLevel, cfg.LogLevel)
	cfg.Log.File = ParseString(EnvLogFile, cfg.Log.File)
	cfg.Store.Backend = ParseString(EnvStoreBackend, cfg.Store.Backend)
	cfg.Store.RedisAddr = ParseString(EnvRedisAddr, cfg.Store.RedisAddr)
	cfg.Relay.ListenAddr = ParseString(EnvListenAddr, cfg.Relay.ListenAddr)
	cfg.Relay.Enabled = ParseBool(EnvRelayEnabled, cfg.Relay.Enabled)
	cfg.Breaks.Interval = ParseDuration(EnvBreakInterval, cfg.Breaks.Interval)
	cfg.Breaks.Defer = ParseDuration(EnvBreakDefer, cfg.Breaks.Defer)
	cfg.Metrics.ListenAddr = ParseString(EnvMetricsListen, cfg.Metrics.ListenAddr)
}
