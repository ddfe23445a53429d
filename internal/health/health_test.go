// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func static(name string, s Status) Checker {
	return CheckerFunc{CheckName: name, Fn: func(context.Context) CheckResult { return CheckResult{Status: s} }}
}

func TestHealthAggregation(t *testing.T) {
	tests := []struct {
		name     string
		checkers []Checker
		want     Status
	}{
		{"no checkers", nil, StatusHealthy},
		{"all healthy", []Checker{static("a", StatusHealthy), static("b", StatusHealthy)}, StatusHealthy},
		{"one degraded", []Checker{static("a", StatusHealthy), static("b", StatusDegraded)}, StatusDegraded},
		{"unhealthy wins", []Checker{static("a", StatusUnhealthy), static("b", StatusDegraded)}, StatusUnhealthy},
		{"informational downgrade", []Checker{Informational(static("a", StatusUnhealthy))}, StatusDegraded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("v1")
			for _, c := range tt.checkers {
				m.RegisterChecker(c)
			}
			resp := m.Health(context.Background())
			assert.Equal(t, tt.want, resp.Status)
			assert.Len(t, resp.Checks, len(tt.checkers))
		})
	}
}

func TestErrorCheckerHasDeadline(t *testing.T) {
	m := NewManager("")
	m.RegisterChecker(ErrorChecker("store", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		return nil
	}))
	assert.Equal(t, StatusHealthy, m.Health(context.Background()).Status)
}

func TestServeHTTP(t *testing.T) {
	m := NewManager("v1")
	m.RegisterChecker(ErrorChecker("store", func(context.Context) error { return errors.New("closed") }))

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, StatusUnhealthy, body.Status)
	assert.Equal(t, "closed", body.Checks["store"].Error)
	assert.Equal(t, "v1", body.Version)

	healthy := NewManager("v1")
	rec = httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
