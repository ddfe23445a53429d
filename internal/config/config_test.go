// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/traindaily/internal/schedule"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)

	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.True(t, cfg.Relay.Enabled)
	assert.Equal(t, ":8841", cfg.Relay.ListenAddr)
	assert.Equal(t, filepath.Join(dir, "cert.pem"), cfg.Relay.CertPath)
	assert.Equal(t, filepath.Join(dir, "key.pem"), cfg.Relay.KeyPath)
	assert.Equal(t, 30*time.Minute, cfg.Breaks.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Breaks.Defer)
	assert.Equal(t, []string{"monday", "wednesday", "friday"}, cfg.Blocker.TrainingDays)
	assert.Equal(t, []string{"sunday"}, cfg.Breaks.RestDays)

	policy, err := cfg.BreakPolicy()
	require.NoError(t, err)
	assert.Equal(t, schedule.DefaultWorkPolicy, policy.Work)

	days, err := cfg.TrainingDays()
	require.NoError(t, err)
	assert.Equal(t, schedule.DefaultTrainingDays, days)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
dataDir: `+dir+`
store:
  backend: memory
breaks:
  interval: 45m
  workStart: "08:30"
  restDays: [saturday, sun]
blocker:
  trainingDays: [tue, thu]
surface:
  showCommand: [notify-send, "{surface}"]
`)
	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, 45*time.Minute, cfg.Breaks.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Breaks.Defer, "absent keys keep defaults")
	assert.Equal(t, []string{"notify-send", "{surface}"}, cfg.Surface.ShowCommand)

	policy, err := cfg.BreakPolicy()
	require.NoError(t, err)
	assert.Equal(t, schedule.ClockTime(8*60+30), policy.Work.Hours.Start)
	assert.Equal(t, schedule.NewWeekdays(time.Saturday, time.Sunday), policy.Work.RestDays)

	days, err := cfg.TrainingDays()
	require.NoError(t, err)
	assert.Equal(t, schedule.NewWeekdays(time.Tuesday, time.Thursday), days)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, "dataDir: /nonexistent\nbreaks:\n  interval: 45m\n")
	t.Setenv(EnvDataDir, dir)
	t.Setenv(EnvBreakInterval, "20m")
	t.Setenv(EnvRelayEnabled, "no")
	t.Setenv(EnvListenAddr, ":9999")

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 20*time.Minute, cfg.Breaks.Interval)
	assert.False(t, cfg.Relay.Enabled)
	assert.Equal(t, ":9999", cfg.Relay.ListenAddr)
}

func TestInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("TRAINDAILY_TEST_DURATION", "soon")
	t.Setenv("TRAINDAILY_TEST_BOOL", "maybe")
	t.Setenv("TRAINDAILY_TEST_INT", "x")
	assert.Equal(t, time.Minute, ParseDuration("TRAINDAILY_TEST_DURATION", time.Minute))
	assert.True(t, ParseBool("TRAINDAILY_TEST_BOOL", true))
	assert.Equal(t, 7, ParseInt("TRAINDAILY_TEST_INT", 7))

	t.Setenv("TRAINDAILY_TEST_INT", "42")
	assert.Equal(t, 42, ParseInt("TRAINDAILY_TEST_INT", 7))
}

func TestStrictParsing(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())

	_, err := NewLoader(writeConfig(t, "relay:\n  port: 1\n"), "").Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownConfigField)

	_, err = NewLoader(writeConfig(t, "logLevel: info\n---\nlogLevel: debug\n"), "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")

	_, err = NewLoader(writeConfig(t, "# only a comment\n"), "").Load()
	require.NoError(t, err, "empty file means defaults")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	_, err = NewLoader(path, "").Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Defaults()
	base.DataDir = "/tmp/traindaily"
	require.NoError(t, Validate(base))

	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"unknown backend", func(c *AppConfig) { c.Store.Backend = "mongo" }},
		{"redis without addr", func(c *AppConfig) { c.Store.Backend = "redis" }},
		{"bad listen addr", func(c *AppConfig) { c.Relay.ListenAddr = "8841" }},
		{"zero keep-alive", func(c *AppConfig) { c.Relay.KeepAlive = 0 }},
		{"zero interval", func(c *AppConfig) { c.Breaks.Interval = 0 }},
		{"bad work start", func(c *AppConfig) { c.Breaks.WorkStart = "9am" }},
		{"bad rest day", func(c *AppConfig) { c.Breaks.RestDays = []string{"someday"} }},
		{"bad training day", func(c *AppConfig) { c.Blocker.TrainingDays = []string{"funday"} }},
		{"bad log level", func(c *AppConfig) { c.LogLevel = "loud" }},
		{"bad metrics addr", func(c *AppConfig) { c.Metrics.ListenAddr = "nope" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	disabled := base
	disabled.Relay.Enabled = false
	disabled.Relay.ListenAddr = "garbage"
	assert.NoError(t, Validate(disabled), "disabled relay is not validated")
}

func TestDefaultConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)
	assert.Empty(t, DefaultConfigPath())

	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("logLevel: debug\n"), 0o600))
	assert.Equal(t, path, DefaultConfigPath())
}
