// Package cache defines the key/value contract shared by the weather and
// advice caches, plus a get-or-load helper that collapses concurrent misses.
package cache

import (
	"context"
	"time"
)

// Policy controls how long a written value stays readable.
type Policy struct {
	// TTL is the absolute lifetime measured from the write. Zero means no absolute expiry.
	TTL time.Duration
	// Sliding, when positive, evicts entries that go unread for this long.
	Sliding time.Duration
}

// Entry is a stored value with its bookkeeping timestamps.
type Entry struct {
	Value      []byte        `json:"value"`
	CreatedAt  time.Time     `json:"createdAt"`
	ExpiresAt  time.Time     `json:"expiresAt,omitempty"`
	Sliding    time.Duration `json:"sliding,omitempty"`
	LastAccess time.Time     `json:"lastAccess"`
}

// NewEntry stamps value with the policy's deadlines relative to now.
func NewEntry(value []byte, policy Policy, now time.Time) Entry {
	entry := Entry{
		Value:      value,
		CreatedAt:  now,
		Sliding:    policy.Sliding,
		LastAccess: now,
	}
	if policy.TTL > 0 {
		entry.ExpiresAt = now.Add(policy.TTL)
	}
	return entry
}

// Expired reports whether the entry must be treated as absent at now.
func (e Entry) Expired(now time.Time) bool {
	if !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt) {
		return true
	}
	if e.Sliding > 0 && now.Sub(e.LastAccess) >= e.Sliding {
		return true
	}
	return false
}

// Store is a string keyed byte cache. Writes are last-writer-wins.
type Store interface {
	// Get returns the value for key and refreshes its sliding window.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, policy Policy) error
	Delete(ctx context.Context, key string) error
}
