// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// AppConfig is the complete daemon configuration.
type AppConfig struct {
	DataDir  string `yaml:"dataDir"`
	LogLevel string `yaml:"logLevel"`

	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
	Relay   RelayConfig   `yaml:"relay"`
	Breaks  BreaksConfig  `yaml:"breaks"`
	Blocker BlockerConfig `yaml:"blocker"`
	Surface SurfaceConfig `yaml:"surface"`
	Metrics MetricsConfig `yaml:"metrics"`

	// Version is the binary version, never read from the file.
	Version string `yaml:"-"`
}

type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
}

type StoreConfig struct {
	Backend   string `yaml:"backend"`
	RedisAddr string `yaml:"redisAddr"`
}

// RelayConfig configures the HTTPS sync relay.
type RelayConfig struct {
	Enabled     bool          `yaml:"enabled"`
	ListenAddr  string        `yaml:"listenAddr"`
	CertPath    string        `yaml:"certPath"`
	KeyPath     string        `yaml:"keyPath"`
	PairingHost string        `yaml:"pairingHost"`
	KeepAlive   time.Duration `yaml:"keepAlive"`
}

// BreaksConfig configures break reminders. WorkStart and WorkEnd are
// "HH:MM" in local time.
type BreaksConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Interval  time.Duration `yaml:"interval"`
	Defer     time.Duration `yaml:"defer"`
	Tick      time.Duration `yaml:"tick"`
	WorkStart string        `yaml:"workStart"`
	WorkEnd   string        `yaml:"workEnd"`
	RestDays  []string      `yaml:"restDays"`
}

type BlockerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Tick         time.Duration `yaml:"tick"`
	TrainingDays []string      `yaml:"trainingDays"`
}

// SurfaceConfig holds the argv used to show and hide UI surfaces.
type SurfaceConfig struct {
	ShowCommand []string `yaml:"showCommand"`
	HideCommand []string `yaml:"hideCommand"`
}

// MetricsConfig enables the Prometheus endpoint when ListenAddr is set.
type MetricsConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}
