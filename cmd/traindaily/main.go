// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/traindaily/internal/config"
	"github.com/ManuGH/traindaily/internal/daemon"
	"github.com/ManuGH/traindaily/internal/log"
	"github.com/ManuGH/traindaily/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "pair":
			os.Exit(runPairCLI(os.Args[2:]))
		case "log":
			os.Exit(runLogCLI(os.Args[2:]))
		case "config":
			os.Exit(runConfigCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	os.Exit(runDaemon(*configPath))
}

func runDaemon(configPath string) int {
	log.Configure(log.Config{Level: "info", Service: "traindaily", Version: version.Version})
	logger := log.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader, cfg, err := loadConfig(configPath)
	if err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "config.load_failed").
			Str("config_path", loader.Path()).
			Msg("failed to load configuration")
		return 1
	}
	configureLogging(cfg)
	logger = log.WithComponent("daemon")

	if loader.Path() != "" {
		logger.Info().
			Str(log.FieldEvent, "config.loaded").
			Str("source", "file").
			Str("path", loader.Path()).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str(log.FieldEvent, "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	st, err := daemon.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "store.open_failed").Msg("failed to open record store")
		return 1
	}
	rt, err := daemon.Bootstrap(ctx, cfg, st, daemon.Overrides{})
	if err != nil {
		_ = st.Close()
		logger.Error().Err(err).Str(log.FieldEvent, "daemon.bootstrap_failed").Msg("failed to start")
		return 1
	}

	holder := config.NewConfigHolder(cfg, loader)
	app := daemon.NewApp(logger, daemon.NewManagerFor(cfg, rt), holder, rt)
	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "daemon.failed").Msg("daemon stopped with error")
		return 1
	}
	return 0
}

// loadConfig uses the explicit path, else <dataDir>/config.yaml when present.
func loadConfig(configPath string) (*config.Loader, config.AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = config.DefaultConfigPath()
	}
	loader := config.NewLoader(path, version.Version)
	cfg, err := loader.Load()
	return loader, cfg, err
}

func configureLogging(cfg config.AppConfig) {
	log.Configure(log.Config{
		Level:      cfg.LogLevel,
		Service:    "traindaily",
		Version:    cfg.Version,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
}
