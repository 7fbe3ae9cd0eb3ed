package cachestore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/wearcast/pkg/cache"
)

// MemoryStore is an in-process cache used for development and single-instance deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]cache.Entry
	now     func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]cache.Entry),
		now:     time.Now,
	}
}

// WithClock swaps the time source, mainly for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	if now != nil {
		s.now = now
	}
	return s
}

// Get implements cache.Store.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	now := s.now()
	if entry.Expired(now) {
		s.mu.Lock()
		// another writer may have replaced it in between
		if current, still := s.entries[key]; still && current.Expired(now) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	if entry.Sliding > 0 {
		s.mu.Lock()
		if current, still := s.entries[key]; still && current.CreatedAt.Equal(entry.CreatedAt) {
			current.LastAccess = now
			s.entries[key] = current
		}
		s.mu.Unlock()
	}
	out := make([]byte, len(entry.Value))
	copy(out, entry.Value)
	return out, true, nil
}

// Set implements cache.Store.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, policy cache.Policy) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	s.mu.Lock()
	s.entries[key] = cache.NewEntry(stored, policy, s.now())
	s.mu.Unlock()
	return nil
}

// Delete implements cache.Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored entries, expired ones included until they are read.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ cache.Store = (*MemoryStore)(nil)
