package favoriterepo

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/wearcast/internal/domain/favorites"
)

// MemoryRepository keeps favorites in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[int64]map[string]favorites.Favorite
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[int64]map[string]favorites.Favorite)}
}

// List returns a user's favorites, oldest first.
func (r *MemoryRepository) List(_ context.Context, userID int64) ([]favorites.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]favorites.Favorite, 0, len(r.items[userID]))
	for _, fav := range r.items[userID] {
		out = append(out, fav)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Key < out[j].Key
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Count returns how many favorites a user has.
func (r *MemoryRepository) Count(_ context.Context, userID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items[userID]), nil
}

// Add inserts fav unless its key already exists for the user.
func (r *MemoryRepository) Add(_ context.Context, fav favorites.Favorite) (favorites.Favorite, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byKey, ok := r.items[fav.UserID]
	if !ok {
		byKey = make(map[string]favorites.Favorite)
		r.items[fav.UserID] = byKey
	}
	if existing, ok := byKey[fav.Key]; ok {
		return existing, false, nil
	}
	byKey[fav.Key] = fav
	return fav, true, nil
}

// Remove deletes a favorite and reports whether it existed.
func (r *MemoryRepository) Remove(_ context.Context, userID int64, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[userID][key]; !ok {
		return false, nil
	}
	delete(r.items[userID], key)
	return true, nil
}

var _ favorites.Repository = (*MemoryRepository)(nil)
