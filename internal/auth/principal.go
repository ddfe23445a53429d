package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Principal identifies an authenticated caller without exposing the secret.
type Principal struct {
	// ID is "t_" plus a short hash of the token; safe to log.
	ID string
}

// NewPrincipal derives a Principal from a verified token.
func NewPrincipal(token string) *Principal {
	hash := sha256.Sum256([]byte(token))
	return &Principal{ID: "t_" + hex.EncodeToString(hash[:])[:16]}
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal set by the auth middleware.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
