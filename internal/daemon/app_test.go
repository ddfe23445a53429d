// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	cryptotls "crypto/tls"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/traindaily/internal/log"
	"github.com/ManuGH/traindaily/internal/store"
	"github.com/ManuGH/traindaily/internal/surface"
)

func TestAppServesRelayAndShutsDownCleanly(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := testConfig(t)
	ov, rec := testOverrides()
	st := store.NewMemoryStore()
	rt, err := Bootstrap(context.Background(), cfg, st, ov)
	require.NoError(t, err)

	app := NewApp(log.WithComponent("test"), NewManagerFor(cfg, rt), nil, rt)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	addrCtx, addrCancel := context.WithTimeout(ctx, 5*time.Second)
	defer addrCancel()
	addr := app.RelayAddr(addrCtx)
	require.NotNil(t, addr)

	transport := &http.Transport{TLSClientConfig: &cryptotls.Config{InsecureSkipVerify: true}} // #nosec G402 -- self-signed test certificate
	client := &http.Client{Transport: transport, Timeout: 5 * time.Second}

	resp, err := client.Get("https://" + addr.String() + "/ping")
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	_ = resp.Body.Close()
	transport.CloseIdleConnections()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, rt.DeviceID, body["deviceId"])

	// Monday without a session: the blocker goes up on the first evaluation.
	require.Eventually(t, func() bool {
		return rec.Count("show", surface.Blocker) == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestAppKeepsRunningWhenRelayCannotBind(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := testConfig(t)
	cfg.Relay.ListenAddr = busy.Addr().String()
	ov, rec := testOverrides()
	rt, err := Bootstrap(context.Background(), cfg, store.NewMemoryStore(), ov)
	require.NoError(t, err)

	app := NewApp(log.WithComponent("test"), NewManagerFor(cfg, rt), nil, rt)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	addrCtx, addrCancel := context.WithTimeout(ctx, 5*time.Second)
	defer addrCancel()
	assert.Nil(t, app.RelayAddr(addrCtx))

	require.Eventually(t, func() bool {
		return rec.Count("show", surface.Blocker) == 1
	}, 5*time.Second, 10*time.Millisecond, "schedulers run without the relay")

	cancel()
	require.NoError(t, <-done)
}

func TestAppRequiresManagerAndStore(t *testing.T) {
	app := NewApp(log.WithComponent("test"), nil, nil, &Runtime{})
	assert.ErrorIs(t, app.Run(context.Background()), ErrMissingManager)

	app = NewApp(log.WithComponent("test"), NewManager(DefaultServerConfig(), Deps{}), nil, &Runtime{})
	assert.ErrorIs(t, app.Run(context.Background()), ErrMissingStore)
}

func TestManagerShutdownBeforeStart(t *testing.T) {
	m := NewManager(DefaultServerConfig(), Deps{Logger: log.WithComponent("test")})
	assert.ErrorIs(t, m.Shutdown(context.Background()), ErrManagerNotStarted)
}
