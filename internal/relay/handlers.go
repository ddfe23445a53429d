// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package relay

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ManuGH/traindaily/internal/log"
	"github.com/ManuGH/traindaily/internal/metrics"
	"github.com/ManuGH/traindaily/internal/schedule"
	"github.com/ManuGH/traindaily/internal/store"
)

// GET /ping
func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	_ = writeJSON(w, http.StatusOK, map[string]string{
		"deviceId": s.cfg.DeviceID,
		"status":   "ok",
	})
}

// GET /sync/sessions
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	all, err := s.deps.Store.All(r.Context())
	if err != nil {
		log.FromContext(r.Context()).Error().Err(err).
			Str(log.FieldEvent, "relay.list_failed").
			Msg("list sessions failed")
		writeInternal(w)
		return
	}
	// Stored bytes are not re-validated by every backend; a corrupt
	// document fails here.
	if err := writeJSON(w, http.StatusOK, all); err != nil {
		log.FromContext(r.Context()).Error().Err(err).
			Str(log.FieldEvent, "relay.list_encode_failed").
			Msg("stored sessions could not be encoded")
	}
}

type saveSessionRequest struct {
	DateKey string          `json:"dateKey"`
	Session json.RawMessage `json:"session"`
}

// POST /sync/session
func (s *Server) handleSaveSession(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	req, reason, status := decodeSaveSession(w, r)
	if status != http.StatusOK {
		logger.Info().
			Str(log.FieldEvent, "relay.save_rejected").
			Str("reason", reason).
			Msg("malformed session write")
		_ = writeJSON(w, status, map[string]string{"error": reason})
		return
	}

	err := s.deps.Sessions.Save(r.Context(), metrics.SourceRelay, req.DateKey, store.Document(req.Session))
	switch {
	case err == nil:
		logger.Info().
			Str(log.FieldEvent, "relay.session_saved").
			Str(log.FieldDateKey, req.DateKey).
			Msg("session saved")
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, schedule.ErrInvalidDateKey):
		writeBadRequest(w, "dateKey must be a YYYY-MM-DD date")
	case errors.Is(err, store.ErrInvalidDocument):
		writeBadRequest(w, "session must be a JSON object")
	default:
		logger.Error().Err(err).
			Str(log.FieldEvent, "relay.save_failed").
			Str(log.FieldDateKey, req.DateKey).
			Msg("save session failed")
		writeInternal(w)
	}
}

// decodeSaveSession validates the body shape; the calendar check on the
// date key happens again in the session service.
func decodeSaveSession(w http.ResponseWriter, r *http.Request) (saveSessionRequest, string, int) {
	var req saveSessionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return req, "request body too large", http.StatusRequestEntityTooLarge
		}
		return req, "invalid JSON body", http.StatusBadRequest
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return req, "invalid JSON body", http.StatusBadRequest
	}
	if req.DateKey == "" {
		return req, "dateKey is required", http.StatusBadRequest
	}
	if !schedule.ValidDateKey(req.DateKey) {
		return req, "dateKey must be a YYYY-MM-DD date", http.StatusBadRequest
	}
	if len(req.Session) == 0 || store.ValidateDocument(store.Document(req.Session)) != nil {
		return req, "session must be a JSON object", http.StatusBadRequest
	}
	return req, "", http.StatusOK
}
