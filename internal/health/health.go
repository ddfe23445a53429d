// SPDX-License-Identifier: MIT

// Package health reports component status on the metrics listener.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ManuGH/traindaily/internal/log"
)

// Status represents the overall health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckTimeout bounds every individual check.
const CheckTimeout = 2 * time.Second

// CheckResult represents the result of a component health check
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Response is the body of GET /healthz.
type Response struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker defines the interface for health checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Manager aggregates checkers.
type Manager struct {
	version string

	mu       sync.RWMutex
	checkers []Checker
}

func NewManager(version string) *Manager {
	return &Manager{version: version}
}

// RegisterChecker adds a health checker to the manager
func (m *Manager) RegisterChecker(checker Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker)
}

// Health runs every checker. Any unhealthy check makes the whole response
// unhealthy; any degraded one makes it degraded.
func (m *Manager) Health(ctx context.Context) Response {
	m.mu.RLock()
	checkers := append([]Checker(nil), m.checkers...)
	m.mu.RUnlock()

	resp := Response{
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckResult, len(checkers)),
	}
	for _, c := range checkers {
		checkCtx, cancel := context.WithTimeout(ctx, CheckTimeout)
		result := c.Check(checkCtx)
		cancel()

		resp.Checks[c.Name()] = result
		switch result.Status {
		case StatusUnhealthy:
			resp.Status = StatusUnhealthy
		case StatusDegraded:
			if resp.Status == StatusHealthy {
				resp.Status = StatusDegraded
			}
		}
	}
	return resp
}

// ServeHTTP answers 200 unless a check is unhealthy (503).
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := m.Health(r.Context())
	code := http.StatusOK
	if resp.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
		log.FromContext(r.Context()).Warn().
			Str(log.FieldEvent, "health.unhealthy").
			Interface("checks", resp.Checks).
			Msg("health check failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc struct {
	CheckName string
	Fn        func(ctx context.Context) CheckResult
}

func (c CheckerFunc) Name() string                          { return c.CheckName }
func (c CheckerFunc) Check(ctx context.Context) CheckResult { return c.Fn(ctx) }

// ErrorChecker maps probe's error to unhealthy.
func ErrorChecker(name string, probe func(ctx context.Context) error) Checker {
	return CheckerFunc{CheckName: name, Fn: func(ctx context.Context) CheckResult {
		if err := probe(ctx); err != nil {
			return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
		}
		return CheckResult{Status: StatusHealthy}
	}}
}

// Informational never fails the response; an unhealthy result is
// downgraded to degraded.
func Informational(c Checker) Checker {
	return CheckerFunc{CheckName: c.Name(), Fn: func(ctx context.Context) CheckResult {
		r := c.Check(ctx)
		if r.Status == StatusUnhealthy {
			r.Status = StatusDegraded
		}
		return r
	}}
}
