// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// SettingKey is the store setting holding the shared secret.
const SettingKey = "auth_token"

// SettingStore is the subset of the record store that persists the secret.
type SettingStore interface {
	Setting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
}

// GenerateSecret returns 16 random bytes as 32 lowercase hex characters.
func GenerateSecret() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// EnsureSecret loads the persisted secret or generates and stores a new one.
// The bool reports whether a new secret was created.
func EnsureSecret(ctx context.Context, s SettingStore) (string, bool, error) {
	secret, ok, err := s.Setting(ctx, SettingKey)
	if err != nil {
		return "", false, fmt.Errorf("load secret: %w", err)
	}
	if ok && secret != "" {
		return secret, false, nil
	}

	secret, err = GenerateSecret()
	if err != nil {
		return "", false, err
	}
	if err := s.SetSetting(ctx, SettingKey, secret); err != nil {
		return "", false, fmt.Errorf("persist secret: %w", err)
	}
	return secret, true, nil
}
