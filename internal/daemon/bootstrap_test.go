// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/traindaily/internal/auth"
	"github.com/ManuGH/traindaily/internal/clock"
	"github.com/ManuGH/traindaily/internal/config"
	"github.com/ManuGH/traindaily/internal/health"
	"github.com/ManuGH/traindaily/internal/presence"
	"github.com/ManuGH/traindaily/internal/store"
	"github.com/ManuGH/traindaily/internal/surface"
)

// Monday, 10:00 local time.
var monday = time.Date(2026, time.February, 16, 10, 0, 0, 0, time.Local)

func testConfig(t *testing.T) config.AppConfig {
	t.Helper()
	cfg := config.Defaults()
	cfg.DataDir = t.TempDir()
	cfg.Store.Backend = store.BackendMemory
	cfg.Relay.ListenAddr = "127.0.0.1:0"
	return cfg
}

func testOverrides() (Overrides, *surface.Recorder) {
	rec := &surface.Recorder{}
	return Overrides{
		Clock:    clock.NewMock(monday),
		Surface:  rec,
		Presence: presence.Static(false),
	}, rec
}

func TestBootstrapWiresEverything(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	st := store.NewMemoryStore()
	ov, _ := testOverrides()

	rt, err := Bootstrap(ctx, cfg, st, ov)
	require.NoError(t, err)

	assert.NotNil(t, rt.Relay)
	assert.NotNil(t, rt.Breaks)
	assert.NotNil(t, rt.Enforce)
	assert.NotEmpty(t, rt.DeviceID)
	assert.Len(t, rt.Secret, 32)
	assert.Equal(t, cfg.Breaks.Tick, rt.Breaks.TickInterval)
	assert.Equal(t, cfg.Blocker.Tick, rt.Enforce.TickInterval)

	stored, ok, err := st.Setting(ctx, auth.SettingKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rt.Secret, stored)

	again, err := Bootstrap(ctx, cfg, st, ov)
	require.NoError(t, err)
	assert.Equal(t, rt.Secret, again.Secret, "secret is generated once")
}

func TestBootstrapDisabledComponents(t *testing.T) {
	cfg := testConfig(t)
	cfg.Relay.Enabled = false
	cfg.Breaks.Enabled = false
	cfg.Blocker.Enabled = false
	ov, _ := testOverrides()

	rt, err := Bootstrap(context.Background(), cfg, store.NewMemoryStore(), ov)
	require.NoError(t, err)
	assert.Nil(t, rt.Relay)
	assert.Nil(t, rt.Breaks)
	assert.Nil(t, rt.Enforce)
	assert.NotNil(t, rt.Sessions)
}

func TestBootstrapRequiresStore(t *testing.T) {
	_, err := Bootstrap(context.Background(), testConfig(t), nil, Overrides{})
	assert.ErrorIs(t, err, ErrMissingStore)
}

func TestApplyUpdatesSchedulers(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	st := store.NewMemoryStore()
	ov, rec := testOverrides()

	rt, err := Bootstrap(ctx, cfg, st, ov)
	require.NoError(t, err)

	blocked, err := rt.Enforce.ShouldBlock(ctx, monday)
	require.NoError(t, err)
	assert.True(t, blocked)

	cfg.Blocker.TrainingDays = []string{"tuesday"}
	require.NoError(t, rt.Apply(cfg))

	blocked, err = rt.Enforce.ShouldBlock(ctx, monday)
	require.NoError(t, err)
	assert.False(t, blocked)

	rt.Enforce.Tick(ctx)
	assert.Zero(t, rec.Count("show", surface.Blocker))

	cfg.Blocker.TrainingDays = []string{"nope"}
	assert.Error(t, rt.Apply(cfg))
	blocked, err = rt.Enforce.ShouldBlock(ctx, monday)
	require.NoError(t, err)
	assert.False(t, blocked, "invalid reload keeps the previous days")
}

func TestHealthReportsStoreAndBlocker(t *testing.T) {
	ctx := context.Background()
	ov, _ := testOverrides()
	rt, err := Bootstrap(ctx, testConfig(t), store.NewMemoryStore(), ov)
	require.NoError(t, err)

	resp := newHealthManager(testConfig(t), rt).Health(ctx)
	assert.Equal(t, health.StatusHealthy, resp.Status)
	assert.Equal(t, "open", resp.Checks["blocker"].Message)
	assert.Equal(t, health.StatusHealthy, resp.Checks["store"].Status)
}
