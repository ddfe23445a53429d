// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ManuGH/traindaily/internal/config"
	"github.com/ManuGH/traindaily/internal/daemon"
	"github.com/ManuGH/traindaily/internal/pairing"
	"github.com/ManuGH/traindaily/internal/store"
)

func TestParseExercises(t *testing.T) {
	got, err := parseExercises([]string{"pushups=12,10,8", "squats=20", "pushups=5"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]int{
		"pushups": {12, 10, 8, 5},
		"squats":  {20},
	}, got)

	for _, bad := range [][]string{
		nil,
		{"pushups"},
		{"=10"},
		{"pushups="},
		{"pushups=ten"},
		{"pushups=-1"},
	} {
		_, err := parseExercises(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestBuildPayloadReusesIdentityAndSecret(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataDir = t.TempDir()
	ctx := context.Background()

	first, err := buildPayload(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 8841, first.Port)
	assert.Equal(t, config.DefaultPairingHost, first.Host)
	assert.Len(t, first.Secret, 32)
	assert.NotEmpty(t, first.IP)

	second, err := buildPayload(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, first.DeviceID, second.DeviceID)
	assert.Equal(t, first.Secret, second.Secret)

	// The daemon sees the same secret.
	st, err := daemon.OpenStore(ctx, cfg)
	require.NoError(t, err)
	defer st.Close()
	rt, err := daemon.Bootstrap(ctx, cfg, st, daemon.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, first.Secret, rt.Secret)
	assert.Equal(t, first.DeviceID, rt.DeviceID)
}

func TestPrintPairing(t *testing.T) {
	p := pairing.Payload{DeviceID: "desk-000000000000", IP: "10.0.0.2", Port: 8841, Secret: "s"}
	var buf bytes.Buffer
	require.NoError(t, printPairing(&buf, p, false))
	assert.True(t, strings.HasSuffix(buf.String(), p.URI()+"\n"))
}

func TestConfigDumpRoundTrips(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvDataDir, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: "+store.BackendMemory+"\n"), 0o600))

	var buf bytes.Buffer
	require.Equal(t, 0, runConfigDump([]string{"-f", path}, &buf))

	var dumped config.AppConfig
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &dumped))
	assert.Equal(t, store.BackendMemory, dumped.Store.Backend)
	assert.Equal(t, dir, dumped.DataDir)
	assert.Equal(t, config.Defaults().Breaks.Interval, dumped.Breaks.Interval)
}
