// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package relay

import (
	"net/http"

	"github.com/ManuGH/traindaily/internal/auth"
	"github.com/ManuGH/traindaily/internal/log"
	"github.com/ManuGH/traindaily/internal/metrics"
)

// authMiddleware enforces the shared secret. The secret itself never
// reaches a log line.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.FromContext(r.Context()).With().Str(log.FieldComponent, "auth").Logger()

		token, present := auth.ExtractToken(r)
		if !present {
			metrics.IncAuthFailure()
			logger.Warn().
				Str(log.FieldEvent, "auth.missing_token").
				Str(log.FieldPath, r.URL.Path).
				Str(log.FieldRemoteAddr, r.RemoteAddr).
				Msg("token missing")
			writeUnauthorized(w)
			return
		}
		if !auth.AuthorizeToken(token, s.cfg.Secret) {
			metrics.IncAuthFailure()
			logger.Warn().
				Str(log.FieldEvent, "auth.invalid_token").
				Str(log.FieldPath, r.URL.Path).
				Str(log.FieldRemoteAddr, r.RemoteAddr).
				Msg("invalid token")
			writeUnauthorized(w)
			return
		}

		ctx := auth.WithPrincipal(r.Context(), auth.NewPrincipal(token))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
