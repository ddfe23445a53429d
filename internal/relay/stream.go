// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package relay

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/traindaily/internal/bus"
	"github.com/ManuGH/traindaily/internal/log"
	"github.com/ManuGH/traindaily/internal/metrics"
)

// EventSessionUpdated is the SSE event name of a change notification.
const EventSessionUpdated = "session_updated"

// GET /sync/stream
//
// The subscription is registered before anything is written, so an event
// published after the client sees ": connected" is never missed.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	sub, err := s.deps.Bus.Subscribe(ctx, bus.TopicSessions)
	if err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "relay.subscribe_failed").Msg("subscribe failed")
		writeInternal(w)
		return
	}
	defer func() { _ = sub.Close() }()

	rc := http.NewResponseController(w)
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		logger.Warn().Err(err).Msg("response writer cannot flush, closing stream")
		return
	}

	metrics.StreamClientConnected()
	defer metrics.StreamClientDisconnected()
	logger.Info().Str(log.FieldEvent, "relay.stream_opened").Msg("live stream opened")
	defer logger.Info().Str(log.FieldEvent, "relay.stream_closed").Msg("live stream closed")

	keepAlive := time.NewTicker(s.cfg.KeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", EventSessionUpdated, ev.DateKey); err != nil {
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
