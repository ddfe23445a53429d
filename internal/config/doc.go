// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads the daemon configuration.
//
// Precedence is defaults, then the YAML file (strict: unknown keys are
// errors), then TRAINDAILY_* environment variables. The result is validated
// as a whole; ConfigHolder swaps in a reloaded config only if it is valid.
package config
