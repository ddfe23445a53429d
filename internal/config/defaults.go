// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"github.com/ManuGH/traindaily/internal/breaks"
	"github.com/ManuGH/traindaily/internal/enforce"
	"github.com/ManuGH/traindaily/internal/relay"
	"github.com/ManuGH/traindaily/internal/schedule"
	"github.com/ManuGH/traindaily/internal/store"
)

const (
	DefaultDataDir     = "~/.local/share/traindaily"
	DefaultListenAddr  = ":8841"
	DefaultPairingHost = "traindaily.vercel.app"
)

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		DataDir:  DefaultDataDir,
		LogLevel: "info",
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Store: StoreConfig{Backend: store.BackendSqlite},
		Relay: RelayConfig{
			Enabled:     true,
			ListenAddr:  DefaultListenAddr,
			PairingHost: DefaultPairingHost,
			KeepAlive:   relay.DefaultKeepAlive,
		},
		Breaks: BreaksConfig{
			Enabled:   true,
			Interval:  breaks.DefaultInterval,
			Defer:     breaks.DefaultDefer,
			Tick:      breaks.DefaultTick,
			WorkStart: schedule.DefaultWorkHours.Start.String(),
			WorkEnd:   schedule.DefaultWorkHours.End.String(),
			RestDays:  schedule.WeekdayNames(schedule.DefaultRestDays),
		},
		Blocker: BlockerConfig{
			Enabled:      true,
			Tick:         enforce.DefaultTick,
			TrainingDays: schedule.WeekdayNames(schedule.DefaultTrainingDays),
		},
	}
}
