// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ManuGH/traindaily/internal/auth"
	"github.com/ManuGH/traindaily/internal/config"
	"github.com/ManuGH/traindaily/internal/daemon"
	"github.com/ManuGH/traindaily/internal/pairing"
)

const pngSize = 512

func runPairCLI(args []string) int {
	fs := flag.NewFlagSet("traindaily pair", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "path to config file (YAML)")
	pngPath := fs.String("png", "", "also write the QR code as a PNG to this path")
	noQR := fs.Bool("no-qr", false, "print only the pairing link")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	quietLogging()

	_, cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	payload, err := buildPayload(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pair: %v\n", err)
		return 1
	}
	if err := printPairing(os.Stdout, payload, !*noQR); err != nil {
		fmt.Fprintf(os.Stderr, "pair: %v\n", err)
		return 1
	}
	if *pngPath != "" {
		if err := payload.WritePNG(*pngPath, pngSize); err != nil {
			fmt.Fprintf(os.Stderr, "pair: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "QR code written to %s\n", *pngPath)
	}
	return 0
}

func buildPayload(ctx context.Context, cfg config.AppConfig) (pairing.Payload, error) {
	port, err := pairing.PortFromAddr(cfg.Relay.ListenAddr)
	if err != nil {
		return pairing.Payload{}, err
	}

	st, err := daemon.OpenStore(ctx, cfg)
	if err != nil {
		return pairing.Payload{}, err
	}
	defer func() { _ = st.Close() }()

	deviceID, err := st.DeviceID(ctx)
	if err != nil {
		return pairing.Payload{}, err
	}
	secret, _, err := auth.EnsureSecret(ctx, st)
	if err != nil {
		return pairing.Payload{}, err
	}

	return pairing.Payload{
		Host:     cfg.Relay.PairingHost,
		DeviceID: deviceID,
		IP:       pairing.LocalIP(),
		Port:     port,
		Secret:   secret,
	}, nil
}

func printPairing(w io.Writer, p pairing.Payload, withQR bool) error {
	if withQR {
		qr, err := p.Terminal()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, qr)
	}
	fmt.Fprintln(w, "Scan the code or open this link on your phone:")
	fmt.Fprintln(w, p.URI())
	return nil
}
