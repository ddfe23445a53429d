// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package surface shows and hides the daemon's two full-screen surfaces.
// Rendering is someone else's job: this package only asks for it.
package surface

import (
	"context"
	"errors"

	"github.com/ManuGH/traindaily/internal/metrics"
)

// Surface ids.
const (
	Blocker = "blocker"
	Break   = "break"
)

// ErrDisplay wraps every failure to show or hide a surface.
var ErrDisplay = errors.New("display surface failed")

// Surface shows or hides a surface by id. Both calls are idempotent.
type Surface interface {
	Show(ctx context.Context, id string) error
	Hide(ctx context.Context, id string) error
}

// Instrumented counts every call on the wrapped surface.
func Instrumented(s Surface) Surface {
	return instrumented{next: s}
}

type instrumented struct {
	next Surface
}

func (i instrumented) Show(ctx context.Context, id string) error {
	err := i.next.Show(ctx, id)
	metrics.RecordSurfaceAction(id, "show", err)
	return err
}

func (i instrumented) Hide(ctx context.Context, id string) error {
	err := i.next.Hide(ctx, id)
	metrics.RecordSurfaceAction(id, "hide", err)
	return err
}
