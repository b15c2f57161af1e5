// Package kvstore abstracts the small key/value stores behind the OTP and
// CSRF services. The in-memory implementation mirrors the single-process
// deployment; the Redis implementation lets several instances share state.
package kvstore

import (
	"context"
	"time"
)

// Item is a stored value with an optional expiry. A zero ExpiresAt means the
// item never expires. Expiry is interpreted by the caller on read; Sweep
// exists to bound memory held by abandoned entries.
type Item struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the item is past its expiry at the given instant.
func (i Item) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Store is a minimal single-key read-modify-write store.
type Store interface {
	// Get returns the stored item, or nil when the key is absent.
	Get(ctx context.Context, key string) (*Item, error)
	// Set stores the item, replacing any prior value for the key.
	Set(ctx context.Context, key string, item Item) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Sweep removes entries past expiry and returns how many were dropped.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
