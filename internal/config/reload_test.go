// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloadNotifiesListeners(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	path := writeConfig(t, "breaks:\n  interval: 30m\n")
	loader := NewLoader(path, "")
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewConfigHolder(initial, loader)
	ch := make(chan AppConfig, 1)
	h.RegisterListener(ch)

	require.NoError(t, os.WriteFile(path, []byte("breaks:\n  interval: 10m\n"), 0o600))
	require.NoError(t, h.Reload(context.Background()))

	assert.Equal(t, 10*time.Minute, h.Get().Breaks.Interval)
	select {
	case got := <-ch:
		assert.Equal(t, 10*time.Minute, got.Breaks.Interval)
	default:
		t.Fatal("listener not notified")
	}
}

func TestReloadKeepsOldConfigOnError(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	path := writeConfig(t, "breaks:\n  interval: 30m\n")
	loader := NewLoader(path, "")
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewConfigHolder(initial, loader)
	ch := make(chan AppConfig, 1)
	h.RegisterListener(ch)

	require.NoError(t, os.WriteFile(path, []byte("breaks:\n  interval: -1m\n"), 0o600))
	err = h.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, 30*time.Minute, h.Get().Breaks.Interval)
	assert.Empty(t, ch)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	path := writeConfig(t, "breaks:\n  interval: 30m\n")
	loader := NewLoader(path, "")
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewConfigHolder(initial, loader)
	ch := make(chan AppConfig, 1)
	h.RegisterListener(ch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, h.StartWatcher(ctx))

	require.NoError(t, os.WriteFile(path, []byte("breaks:\n  interval: 15m\n"), 0o600))

	select {
	case got := <-ch:
		assert.Equal(t, 15*time.Minute, got.Breaks.Interval)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload")
	}
}

func TestWatcherWithoutFileIsNoop(t *testing.T) {
	h := NewConfigHolder(Defaults(), NewLoader("", ""))
	require.NoError(t, h.StartWatcher(context.Background()))
}
