// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package store defines the record store shared by the sync relay and the
// schedulers, plus its backends (sqlite, badger, redis, memory).
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Document is a schema-less session document: a raw JSON object.
type Document = json.RawMessage

var (
	// ErrUnavailable wraps every backend failure.
	ErrUnavailable = errors.New("record store unavailable")
	// ErrInvalidDocument is returned by Save for anything but a JSON object.
	ErrInvalidDocument = errors.New("document must be a JSON object")
)

// RecordStore is a key to document store with atomic per-key replace.
// Implementations are safe for concurrent use and never hold a lock across
// calls back into the caller.
type RecordStore interface {
	// All returns every session record keyed by date key.
	All(ctx context.Context) (map[string]Document, error)
	// Save replaces the record at key wholesale.
	Save(ctx context.Context, key string, doc Document) error
	// Has reports whether a record exists at key.
	Has(ctx context.Context, key string) (bool, error)

	// FirstSessionDate returns the write-once first-session marker.
	FirstSessionDate(ctx context.Context) (string, bool, error)
	// SetFirstSessionDate stores the marker unless one already exists.
	SetFirstSessionDate(ctx context.Context, key string) error

	Setting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error

	// DeviceID returns the install's stable identifier, creating it once.
	DeviceID(ctx context.Context) (string, error)

	Close() error
}

// unavailable classifies a backend error.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// ValidateDocument checks that doc is a single JSON object.
func ValidateDocument(doc Document) error {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return ErrInvalidDocument
	}
	return nil
}

func cloneDocument(doc Document) Document {
	return Document(bytes.Clone(doc))
}
