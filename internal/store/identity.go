// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/renameio/v2"
)

// DeviceIDFile holds the device identity inside the data directory.
const DeviceIDFile = "device_id.txt"

const fallbackHostname = "traindaily"

// identity persists the device id as a plain file next to the data so every
// backend (and the CLI) reports the same id.
type identity struct {
	path string // empty: in-memory only

	mu sync.Mutex
	id string
}

func newIdentity(dir string) *identity {
	if dir == "" {
		return &identity{}
	}
	return &identity{path: filepath.Join(dir, DeviceIDFile)}
}

func (i *identity) get() (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.id != "" {
		return i.id, nil
	}

	if i.path != "" {
		data, err := os.ReadFile(i.path)
		switch {
		case err == nil:
			if id := strings.TrimSpace(string(data)); id != "" {
				i.id = id
				return id, nil
			}
		case !errors.Is(err, fs.ErrNotExist):
			return "", unavailable("read device id", err)
		}
	}

	id, err := NewDeviceID()
	if err != nil {
		return "", err
	}
	if i.path != "" {
		if err := renameio.WriteFile(i.path, []byte(id), 0o644); err != nil {
			return "", unavailable("write device id", err)
		}
	}
	i.id = id
	return id, nil
}

// NewDeviceID returns "<lowercased-hostname>-<12 hex chars>".
func NewDeviceID() (string, error) {
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		host = fallbackHostname
	}
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate device id: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(host)) + "-" + hex.EncodeToString(suffix), nil
}
