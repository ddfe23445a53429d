// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package relay is the authenticated HTTPS API the companion client syncs
// against: a ping, a full dump, a single-record write and a live stream of
// change notifications.
package relay

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ManuGH/traindaily/internal/bus"
	"github.com/ManuGH/traindaily/internal/log"
	"github.com/ManuGH/traindaily/internal/relay/middleware"
	"github.com/ManuGH/traindaily/internal/sessions"
	"github.com/ManuGH/traindaily/internal/store"
)

const (
	// DefaultKeepAlive is the interval of SSE keep-alive comments.
	DefaultKeepAlive = 25 * time.Second
	// MaxBodyBytes bounds POST /sync/session bodies.
	MaxBodyBytes = 1 << 20
)

var (
	ErrMissingSecret   = errors.New("relay: secret is required")
	ErrMissingDeviceID = errors.New("relay: device id is required")
	ErrMissingStore    = errors.New("relay: store is required")
	ErrMissingSessions = errors.New("relay: sessions service is required")
	ErrMissingBus      = errors.New("relay: bus is required")
)

// Config is the static relay configuration.
type Config struct {
	DeviceID  string
	Secret    string
	KeepAlive time.Duration
	Stack     middleware.StackConfig
}

// Deps are the shared collaborators.
type Deps struct {
	Store    store.RecordStore
	Sessions *sessions.Service
	Bus      bus.Bus
}

// Validate reports every missing dependency at once.
func (d Deps) Validate() error {
	var errs []error
	if d.Store == nil {
		errs = append(errs, ErrMissingStore)
	}
	if d.Sessions == nil {
		errs = append(errs, ErrMissingSessions)
	}
	if d.Bus == nil {
		errs = append(errs, ErrMissingBus)
	}
	return errors.Join(errs...)
}

// Server holds the relay handlers.
type Server struct {
	cfg    Config
	deps   Deps
	logger zerolog.Logger

	// done ends open streams when the HTTP server shuts down.
	done     chan struct{}
	doneOnce sync.Once
}

// New validates cfg and deps and returns a Server.
func New(cfg Config, deps Deps) (*Server, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.DeviceID == "" {
		return nil, ErrMissingDeviceID
	}
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = DefaultKeepAlive
	}
	return &Server{
		cfg:    cfg,
		deps:   deps,
		logger: log.WithComponent("relay"),
		done:   make(chan struct{}),
	}, nil
}

// Handler returns the routed handler. Every route is served both at the
// root and under /api.
func (s *Server) Handler() http.Handler {
	r := middleware.NewRouter(s.cfg.Stack)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		_ = writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		_ = writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	s.routes(r)
	r.Route("/api", s.routes)
	return r
}

func (s *Server) routes(r chi.Router) {
	r.Get("/ping", s.handlePing)
	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/sync/sessions", s.handleListSessions)
		r.Post("/sync/session", s.handleSaveSession)
		r.Get("/sync/stream", s.handleStream)
	})
}

// CloseStreams ends every open live stream. It is registered with
// http.Server.RegisterOnShutdown, since Shutdown does not cancel the
// contexts of hijack-free long-lived requests.
func (s *Server) CloseStreams() {
	s.doneOnce.Do(func() { close(s.done) })
}
