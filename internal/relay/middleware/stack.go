// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package middleware is the relay's HTTP ingress stack.
package middleware

import (
	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/traindaily/internal/log"
)

// StackConfig toggles the optional layers of the ingress stack.
type StackConfig struct {
	EnableCORS    bool
	EnableMetrics bool
	EnableLogging bool
}

// DefaultStack is what the relay runs with.
func DefaultStack() StackConfig {
	return StackConfig{EnableCORS: true, EnableMetrics: true, EnableLogging: true}
}

// NewRouter constructs a chi router with the ingress stack applied.
func NewRouter(cfg StackConfig) *chi.Mux {
	r := chi.NewRouter()
	ApplyStack(r, cfg)
	return r
}

// ApplyStack applies, outermost first: Recoverer, RequestID, CORS, security
// headers, access logging, metrics.
func ApplyStack(r chi.Router, cfg StackConfig) {
	r.Use(Recoverer)
	r.Use(RequestID)
	if cfg.EnableCORS {
		r.Use(CORS)
	}
	r.Use(SecurityHeaders)
	if cfg.EnableLogging {
		r.Use(log.Middleware())
	}
	if cfg.EnableMetrics {
		r.Use(Metrics)
	}
}
