// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package auth implements the single shared-secret scheme of the sync relay.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// QueryParam is the query parameter carrying the secret for clients that
// cannot set headers (EventSource).
const QueryParam = "token"

// ExtractToken retrieves the secret from the request.
// 1. Query: ?token=
// 2. Authorization: Bearer <token>
// The first source that is present decides: a present but wrong query token
// is not rescued by a valid header. The bool is false when neither is present.
func ExtractToken(r *http.Request) (string, bool) {
	q := r.URL.Query()
	if q.Has(QueryParam) {
		return q.Get(QueryParam), true
	}

	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):]), true
	}

	return "", false
}

// AuthorizeToken returns true if got matches expected using constant-time comparison.
// Empty tokens are always treated as unauthorized.
func AuthorizeToken(got, expected string) bool {
	if strings.TrimSpace(expected) == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// AuthorizeRequest extracts a token from r and validates it against expected.
func AuthorizeRequest(r *http.Request, expected string) bool {
	if r == nil {
		return false
	}
	got, ok := ExtractToken(r)
	if !ok {
		return false
	}
	return AuthorizeToken(got, expected)
}
