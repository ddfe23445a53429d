// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package procgroup runs helper commands in their own process group so a
// cancelled helper is killed together with everything it spawned.
package procgroup

import (
	"os/exec"
	"syscall"
	"time"
)

// Bind prepares a command created with exec.CommandContext: it starts in a
// new process group, context cancellation kills the whole group, and Wait
// gives up on inherited pipes after waitDelay.
func Bind(cmd *exec.Cmd, waitDelay time.Duration) {
	Set(cmd)
	cmd.Cancel = func() error {
		return Kill(cmd, syscall.SIGKILL)
	}
	cmd.WaitDelay = waitDelay
}
