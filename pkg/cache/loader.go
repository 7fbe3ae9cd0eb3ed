package cache

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// LoadFunc computes a value on a miss together with the policy it should be cached under.
type LoadFunc func(ctx context.Context) ([]byte, Policy, error)

// Loader wraps a Store with get-or-compute semantics. At most one LoadFunc runs
// per key at a time; concurrent callers for the same key share its result.
type Loader struct {
	store  Store
	group  singleflight.Group
	logger *slog.Logger
}

// NewLoader constructs a Loader over store.
func NewLoader(store Store, logger *slog.Logger) *Loader {
	return &Loader{store: store, logger: logger}
}

type loadResult struct {
	value []byte
	hit   bool
}

// GetOrLoad returns the cached value for key, or runs load and caches its result.
// The boolean reports whether the value came from the cache. Load errors are
// returned as-is and never cached. Store failures degrade to a miss.
// A caller whose ctx ends stops waiting at once; the shared load keeps running
// without that cancellation and still populates the cache.
func (l *Loader) GetOrLoad(ctx context.Context, key string, load LoadFunc) ([]byte, bool, error) {
	if value, ok := l.lookup(ctx, key); ok {
		return value, true, nil
	}

	// The shared load must not die with whichever caller happened to start it.
	shared := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (any, error) {
		if value, ok := l.lookup(shared, key); ok {
			return loadResult{value: value, hit: true}, nil
		}
		value, policy, err := load(shared)
		if err != nil {
			return nil, err
		}
		if err := l.store.Set(shared, key, value, policy); err != nil {
			l.logger.Warn("cache write failed", "key", key, "error", err)
		}
		return loadResult{value: value}, nil
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		out := res.Val.(loadResult)
		return out.value, out.hit, nil
	}
}

func (l *Loader) lookup(ctx context.Context, key string) ([]byte, bool) {
	value, ok, err := l.store.Get(ctx, key)
	if err != nil {
		l.logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	return value, ok
}
