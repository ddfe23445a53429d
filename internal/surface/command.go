// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package surface

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/traindaily/internal/procgroup"
)

// Placeholder in a command argv is replaced by the surface id.
const Placeholder = "{surface}"

const commandTimeout = 15 * time.Second

// CommandSurface delegates to external programs, e.g. a window helper or
// the desktop shell. An empty argv only logs the request.
type CommandSurface struct {
	ShowCommand []string
	HideCommand []string
	Logger      zerolog.Logger
}

func (c *CommandSurface) Show(ctx context.Context, id string) error {
	return c.run(ctx, "show", c.ShowCommand, id)
}

func (c *CommandSurface) Hide(ctx context.Context, id string) error {
	return c.run(ctx, "hide", c.HideCommand, id)
}

func (c *CommandSurface) run(ctx context.Context, action string, argv []string, id string) error {
	if len(argv) == 0 {
		c.Logger.Info().
			Str("event", "surface."+action).
			Str("surface", id).
			Msg("no surface command configured, request logged only")
		return nil
	}

	args := make([]string, len(argv))
	for i, a := range argv {
		args[i] = strings.ReplaceAll(a, Placeholder, id)
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	// #nosec G204 -- argv comes from the user's own config file
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	procgroup.Bind(cmd, time.Second)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s %s: %w (%s)", ErrDisplay, action, id, err, strings.TrimSpace(stderr.String()))
	}

	c.Logger.Debug().
		Str("event", "surface."+action).
		Str("surface", id).
		Str("command", args[0]).
		Msg("surface command ran")
	return nil
}
