package repository

import "context"

// -----------------------------
// Session token
// -----------------------------

// TokenSource is the read-only view of the stored session token. The HTTP
// transport depends on this, never on TokenStore.
type TokenSource interface {
	// Get returns ok=false with a nil error when no token is stored.
	Get(ctx context.Context) (token string, ok bool, err error)
}

// TokenStore persists the single opaque session token of a profile.
// The Session Manager is its only writer.
type TokenStore interface {
	TokenSource
	Set(ctx context.Context, token string) error
	// Clear removes any stored token; clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
