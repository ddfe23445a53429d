// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Source labels for session writes.
const (
	SourceRelay = "relay"
	SourceLocal = "local"
)

var (
	sessionsSavedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traindaily_sessions_saved_total",
		Help: "Session records saved by write path and outcome",
	}, []string{"source", "outcome"}) // outcome=success|failure

	authFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "traindaily_relay_auth_failures_total",
		Help: "Relay requests rejected for a missing or wrong secret",
	})

	streamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "traindaily_relay_stream_clients",
		Help: "Currently connected live-update stream clients",
	})

	surfaceActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traindaily_surface_actions_total",
		Help: "Surface show/hide requests by surface, action and outcome",
	}, []string{"surface", "action", "outcome"})

	breakDefersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "traindaily_break_defers_total",
		Help: "Break reminders deferred because the microphone was in use",
	})

	blockerActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "traindaily_blocker_active",
		Help: "Whether the training blocker is currently shown (1) or not (0)",
	})

	schedulerSkippedTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traindaily_scheduler_skipped_ticks_total",
		Help: "Scheduler ticks skipped because a dependency failed",
	}, []string{"scheduler", "reason"})

	presenceProbeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "traindaily_presence_probe_errors_total",
		Help: "Presence probe failures collapsed to inactive",
	})
)

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordSessionSave counts a session write.
func RecordSessionSave(source string, err error) {
	sessionsSavedTotal.WithLabelValues(source, outcome(err)).Inc()
}

// IncAuthFailure counts a rejected relay request.
func IncAuthFailure() { authFailuresTotal.Inc() }

// StreamClientConnected and StreamClientDisconnected track live stream clients.
func StreamClientConnected()    { streamClients.Inc() }
func StreamClientDisconnected() { streamClients.Dec() }

// RecordSurfaceAction counts a show or hide request.
func RecordSurfaceAction(surface, action string, err error) {
	surfaceActionsTotal.WithLabelValues(surface, action, outcome(err)).Inc()
}

// IncBreakDefer counts a deferred break.
func IncBreakDefer() { breakDefersTotal.Inc() }

// SetBlockerActive mirrors the enforcement scheduler state.
func SetBlockerActive(active bool) {
	if active {
		blockerActive.Set(1)
		return
	}
	blockerActive.Set(0)
}

// IncSkippedTick counts a tick a scheduler could not evaluate.
func IncSkippedTick(scheduler, reason string) {
	schedulerSkippedTicks.WithLabelValues(scheduler, reason).Inc()
}

// IncPresenceProbeError counts a failed presence probe.
func IncPresenceProbeError() { presenceProbeErrors.Inc() }
