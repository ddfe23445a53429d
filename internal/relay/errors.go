// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package relay

import (
	"encoding/json"
	"net/http"
)

var internalErrorBody = []byte(`{"error":"internal error"}` + "\n")

// writeJSON encodes v before touching the response, so an encoding failure
// still turns into a 500.
func writeJSON(w http.ResponseWriter, code int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		writeBody(w, http.StatusInternalServerError, internalErrorBody)
		return err
	}
	writeBody(w, code, append(body, '\n'))
	return nil
}

func writeBody(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func writeBadRequest(w http.ResponseWriter, reason string) {
	_ = writeJSON(w, http.StatusBadRequest, map[string]string{"error": reason})
}

func writeUnauthorized(w http.ResponseWriter) {
	_ = writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}

// writeInternal never leaks the underlying error to the client.
func writeInternal(w http.ResponseWriter) {
	writeBody(w, http.StatusInternalServerError, internalErrorBody)
}
