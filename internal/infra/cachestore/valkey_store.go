package cachestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/wearcast/pkg/cache"
)

// commands is the slice of Valkey the store relies on. ttl values are whole seconds.
type commands interface {
	get(ctx context.Context, key string) (string, bool, error)
	set(ctx context.Context, key, value string, ttl time.Duration) error
	expire(ctx context.Context, key string, ttl time.Duration) error
	del(ctx context.Context, key string) error
}

// ValkeyStore persists cache entries in a Valkey-compatible database so several
// instances share one cache. Key expiry enforces both the absolute and sliding deadlines.
type ValkeyStore struct {
	cmds   commands
	prefix string
	now    func() time.Time
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	return newValkeyStore(valkeyCommands{client: client}, prefix)
}

func newValkeyStore(cmds commands, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "wearcast"
	}
	return &ValkeyStore{cmds: cmds, prefix: prefix, now: time.Now}
}

// Get implements cache.Store. A sliding entry has its key TTL pushed out on
// every hit, capped by the absolute deadline.
func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	fullKey := s.entryKey(key)
	payload, ok, err := s.cmds.get(ctx, fullKey)
	if err != nil || !ok {
		return nil, false, err
	}
	var entry cache.Entry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return nil, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	now := s.now()
	if !entry.ExpiresAt.IsZero() && !now.Before(entry.ExpiresAt) {
		return nil, false, nil
	}
	if entry.Sliding > 0 {
		if ttl := expiryFor(entry, now); ttl > 0 {
			if err := s.cmds.expire(ctx, fullKey, roundUpSecond(ttl)); err != nil {
				return nil, false, err
			}
		}
	}
	return entry.Value, true, nil
}

// Set implements cache.Store.
func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte, policy cache.Policy) error {
	now := s.now()
	entry := cache.NewEntry(value, policy, now)
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	var ttl time.Duration
	if d := expiryFor(entry, now); d > 0 {
		ttl = roundUpSecond(d)
	}
	return s.cmds.set(ctx, s.entryKey(key), string(payload), ttl)
}

// Delete implements cache.Store.
func (s *ValkeyStore) Delete(ctx context.Context, key string) error {
	return s.cmds.del(ctx, s.entryKey(key))
}

func (s *ValkeyStore) entryKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

// expiryFor is the key TTL that honors whichever deadline comes first.
func expiryFor(entry cache.Entry, now time.Time) time.Duration {
	var ttl time.Duration
	if !entry.ExpiresAt.IsZero() {
		ttl = entry.ExpiresAt.Sub(now)
	}
	if entry.Sliding > 0 && (ttl <= 0 || entry.Sliding < ttl) {
		ttl = entry.Sliding
	}
	return ttl
}

func roundUpSecond(d time.Duration) time.Duration {
	if d < time.Second {
		return time.Second
	}
	return d.Round(time.Second)
}

type valkeyCommands struct {
	client valkey.Client
}

func (v valkeyCommands) get(ctx context.Context, key string) (string, bool, error) {
	payload, err := v.client.Do(ctx, v.client.B().Get().Key(key).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return payload, true, nil
}

func (v valkeyCommands) set(ctx context.Context, key, value string, ttl time.Duration) error {
	builder := v.client.B().Set().Key(key).Value(value)
	if ttl > 0 {
		return v.client.Do(ctx, builder.Ex(ttl).Build()).Error()
	}
	return v.client.Do(ctx, builder.Build()).Error()
}

func (v valkeyCommands) expire(ctx context.Context, key string, ttl time.Duration) error {
	return v.client.Do(ctx, v.client.B().Expire().Key(key).Seconds(int64(ttl/time.Second)).Build()).Error()
}

func (v valkeyCommands) del(ctx context.Context, key string) error {
	return v.client.Do(ctx, v.client.B().Del().Key(key).Build()).Error()
}

var _ cache.Store = (*ValkeyStore)(nil)
