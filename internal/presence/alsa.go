// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package presence

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoCaptureDevices means the probe found nothing to inspect.
var ErrNoCaptureDevices = errors.New("no capture devices found")

// ALSAProbe reports whether any ALSA capture substream is RUNNING, read from
// <Root>/card*/pcm*c/sub*/status.
type ALSAProbe struct {
	Root string // default /proc/asound
}

func (p ALSAProbe) Active(ctx context.Context) (bool, error) {
	root := p.Root
	if root == "" {
		root = "/proc/asound"
	}
	paths, err := filepath.Glob(filepath.Join(root, "card*", "pcm*c", "sub*", "status"))
	if err != nil {
		return false, fmt.Errorf("glob capture devices: %w", err)
	}
	if len(paths) == 0 {
		return false, ErrNoCaptureDevices
	}

	var (
		firstErr error
		read     int
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		running, err := substreamRunning(path)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		read++
		if running {
			return true, nil
		}
	}
	// Unreadable substreams only matter if nothing could be read.
	if read == 0 {
		return false, firstErr
	}
	return false, nil
}

func substreamRunning(path string) (bool, error) {
	f, err := os.Open(path) // #nosec G304 -- fixed /proc layout
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if state, ok := strings.CutPrefix(line, "state:"); ok {
			return strings.TrimSpace(state) == "RUNNING", nil
		}
	}
	return false, sc.Err()
}
