// Package auth verifies Clerk session tokens and carries the verified
// claims through request contexts.
package auth

import (
	"context"
	"time"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	claimsContextKey contextKey = "session_claims"
	claimsSlotKey    contextKey = "session_claims_slot"
)

// Claims are the verified session token fields the API relies on.
type Claims struct {
	// Subject is the Clerk user id.
	Subject         string
	SessionID       string
	Issuer          string
	AuthorizedParty string
	ExpiresAt       time.Time
}

// WithClaims adds verified claims to the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	if slot, ok := ctx.Value(claimsSlotKey).(**Claims); ok && slot != nil {
		*slot = claims
	}
	return context.WithValue(ctx, claimsContextKey, claims)
}

// WithClaimsSlot registers slot to receive the claims of any WithClaims
// call made further down the same context chain. Outer middleware uses it
// to see who a request was authenticated as.
func WithClaimsSlot(ctx context.Context, slot **Claims) context.Context {
	return context.WithValue(ctx, claimsSlotKey, slot)
}

// ClaimsFromContext retrieves claims from the context.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// ClerkIDFromContext returns the authenticated Clerk user id.
// Returns empty string if not authenticated.
func ClerkIDFromContext(ctx context.Context) string {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return ""
	}
	return claims.Subject
}
