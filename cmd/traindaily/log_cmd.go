// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ManuGH/traindaily/internal/daemon"
	"github.com/ManuGH/traindaily/internal/log"
	"github.com/ManuGH/traindaily/internal/sessions"
	"github.com/ManuGH/traindaily/internal/version"
)

func runLogCLI(args []string) int {
	fs := flag.NewFlagSet("traindaily log", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "path to config file (YAML)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: traindaily log [-config file] exercise=reps[,reps...] ...")
		fmt.Fprintln(os.Stderr, "  e.g. traindaily log pushups=12,10,8 squats=20,20")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	exercises, err := parseExercises(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		fs.Usage()
		return 2
	}

	quietLogging()
	_, cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	ctx := context.Background()
	st, err := daemon.OpenStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		return 1
	}
	defer func() { _ = st.Close() }()

	// No bus: a running daemon picks the record up on its next tick.
	svc := sessions.New(st, nil, nil)
	dateKey, doc, err := svc.LogLocal(ctx, exercises)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "logged %s: %s\n", dateKey, doc)
	return 0
}

// parseExercises turns ["pushups=12,10", "squats=20"] into a set map.
// A repeated exercise appends to its sets.
func parseExercises(args []string) (map[string][]int, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no exercises given")
	}
	out := make(map[string][]int, len(args))
	for _, arg := range args {
		name, reps, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" || reps == "" {
			return nil, fmt.Errorf("invalid exercise %q (want name=reps[,reps...])", arg)
		}
		for _, r := range strings.Split(reps, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(r))
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid reps %q for %s", r, name)
			}
			out[name] = append(out[name], n)
		}
	}
	return out, nil
}

func quietLogging() {
	log.Configure(log.Config{Level: "warn", Output: os.Stderr, Service: "traindaily", Version: version.Version})
}
