// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/traindaily/internal/config"
)

func runConfigCLI(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage()
		return 0
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:])
	case "dump":
		return runConfigDump(args[1:], os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage()
		return 2
	}
}

func printConfigUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  traindaily config validate [-f config.yaml]")
	fmt.Fprintln(os.Stderr, "  traindaily config dump [-f config.yaml]")
}

func configFileFlag(fs *flag.FlagSet) *string {
	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	return &file
}

func runConfigValidate(args []string) int {
	fs := flag.NewFlagSet("traindaily config validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	file := configFileFlag(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	quietLogging()
	loader, _, err := loadConfig(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		return 1
	}
	if loader.Path() == "" {
		fmt.Println("OK (defaults and environment; no config file)")
		return 0
	}
	fmt.Printf("OK: %s\n", loader.Path())
	return 0
}

// runConfigDump prints the effective configuration after file and
// environment overrides.
func runConfigDump(args []string, w io.Writer) int {
	fs := flag.NewFlagSet("traindaily config dump", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	file := configFileFlag(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	quietLogging()
	_, cfg, err := loadConfig(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		return 1
	}
	if err := writeYAML(w, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "dump: %v\n", err)
		return 1
	}
	return 0
}

func writeYAML(w io.Writer, cfg config.AppConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	return enc.Close()
}
