// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

//go:build linux

package procgroup

import (
	"bytes"
	"context"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessGroupKill(t *testing.T) {
	cmd := exec.Command("sh", "-c", "sleep 10 & sleep 10")
	Set(cmd)
	require.NoError(t, cmd.Start())

	pid := cmd.Process.Pid
	pgid, err := syscall.Getpgid(pid)
	require.NoError(t, err)
	assert.Equal(t, pid, pgid, "process should be group leader")

	require.NoError(t, Kill(cmd, syscall.SIGKILL))
	require.Error(t, cmd.Wait(), "killed command exits with an error")

	require.Eventually(t, func() bool {
		return syscall.Kill(-pgid, syscall.Signal(0)) == syscall.ESRCH
	}, 2*time.Second, 20*time.Millisecond, "process group should be gone")
}

func TestBindCancelKillsChildren(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	// The background sleep inherits stderr; without a group kill Wait
	// would block on the pipe until it exits.
	cmd := exec.CommandContext(ctx, "sh", "-c", "sleep 30 & sleep 30")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	Bind(cmd, time.Second)
	require.NoError(t, cmd.Start())

	start := time.Now()
	cancel()
	require.Error(t, cmd.Wait())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestKillNilCommand(t *testing.T) {
	require.NoError(t, Kill(nil, syscall.SIGKILL))
	require.NoError(t, Kill(&exec.Cmd{}, syscall.SIGKILL))
}
