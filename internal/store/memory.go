// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"context"
	"sync"
)

// MemoryStore keeps everything in process memory. It backs tests and the
// "memory" backend.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Document
	first    string
	settings map[string]string

	id *identity
}

// NewMemoryStore returns an empty store with an ephemeral device id.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Document),
		settings: make(map[string]string),
		id:       newIdentity(""),
	}
}

func (m *MemoryStore) All(_ context.Context) (map[string]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Document, len(m.sessions))
	for k, v := range m.sessions {
		out[k] = cloneDocument(v)
	}
	return out, nil
}

func (m *MemoryStore) Save(_ context.Context, key string, doc Document) error {
	if err := ValidateDocument(doc); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[key] = cloneDocument(doc)
	return nil
}

func (m *MemoryStore) Has(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[key]
	return ok, nil
}

func (m *MemoryStore) FirstSessionDate(_ context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.first, m.first != "", nil
}

func (m *MemoryStore) SetFirstSessionDate(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.first == "" {
		m.first = key
	}
	return nil
}

func (m *MemoryStore) Setting(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.settings[key]
	return v, ok, nil
}

func (m *MemoryStore) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

func (m *MemoryStore) DeviceID(_ context.Context) (string, error) {
	return m.id.get()
}

func (m *MemoryStore) Close() error { return nil }
