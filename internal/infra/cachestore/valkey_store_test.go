package cachestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/wearcast/pkg/cache"
)

type expireCall struct {
	key string
	ttl time.Duration
}

// fakeCommands keeps values in a map and records the TTLs the store asks for.
// Keys never expire on their own, so the store's own deadline checks are visible.
type fakeCommands struct {
	values  map[string]string
	setTTLs map[string]time.Duration
	expires []expireCall
	getErr  error
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{values: map[string]string{}, setTTLs: map[string]time.Duration{}}
}

func (f *fakeCommands) get(_ context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[key]
	return v, ok, nil
}

func (f *fakeCommands) set(_ context.Context, key, value string, ttl time.Duration) error {
	f.values[key] = value
	f.setTTLs[key] = ttl
	return nil
}

func (f *fakeCommands) expire(_ context.Context, key string, ttl time.Duration) error {
	f.expires = append(f.expires, expireCall{key: key, ttl: ttl})
	return nil
}

func (f *fakeCommands) del(_ context.Context, key string) error {
	delete(f.values, key)
	return nil
}

func newTestValkeyStore(cmds *fakeCommands, clock *fakeClock) *ValkeyStore {
	store := newValkeyStore(cmds, "test")
	store.now = clock.Now
	return store
}

func TestValkeyStoreSetUsesEarliestDeadline(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cmds := newFakeCommands()
	store := newTestValkeyStore(cmds, clock)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "weather:paris", []byte("sunny"), cache.Policy{TTL: 5 * time.Minute}))
	require.NoError(t, store.Set(ctx, "advice:paris", []byte("coat"), cache.Policy{TTL: 10 * time.Minute, Sliding: 5 * time.Minute}))
	require.NoError(t, store.Set(ctx, "forever", []byte("x"), cache.Policy{}))

	require.Equal(t, 5*time.Minute, cmds.setTTLs["test:weather:paris"])
	require.Equal(t, 5*time.Minute, cmds.setTTLs["test:advice:paris"])
	require.Zero(t, cmds.setTTLs["test:forever"])
}

func TestValkeyStoreSlidingHitRefreshesKeyTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cmds := newFakeCommands()
	store := newTestValkeyStore(cmds, clock)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "advice:paris", []byte("coat"), cache.Policy{TTL: 10 * time.Minute, Sliding: 5 * time.Minute}))

	clock.Advance(3 * time.Minute)
	value, ok, err := store.Get(ctx, "advice:paris")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "coat", string(value))
	require.Equal(t, []expireCall{{key: "test:advice:paris", ttl: 5 * time.Minute}}, cmds.expires)
}

func TestValkeyStoreSlidingRefreshCappedByAbsoluteExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cmds := newFakeCommands()
	store := newTestValkeyStore(cmds, clock)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "advice:paris", []byte("coat"), cache.Policy{TTL: 10 * time.Minute, Sliding: 5 * time.Minute}))

	clock.Advance(4 * time.Minute)
	_, ok, err := store.Get(ctx, "advice:paris")
	require.NoError(t, err)
	require.True(t, ok)

	clock.Advance(4*time.Minute + 30*time.Second)
	_, ok, err = store.Get(ctx, "advice:paris")
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, cmds.expires, 2)
	require.Equal(t, 5*time.Minute, cmds.expires[0].ttl)
	require.Equal(t, 90*time.Second, cmds.expires[1].ttl)
}

func TestValkeyStorePastAbsoluteExpiryIsMiss(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cmds := newFakeCommands()
	store := newTestValkeyStore(cmds, clock)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "advice:paris", []byte("coat"), cache.Policy{TTL: 10 * time.Minute, Sliding: 5 * time.Minute}))

	clock.Advance(10 * time.Minute)
	_, ok, err := store.Get(ctx, "advice:paris")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, cmds.expires)
}

func TestValkeyStoreAbsoluteOnlyHitDoesNotTouch(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cmds := newFakeCommands()
	store := newTestValkeyStore(cmds, clock)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "weather:paris", []byte("sunny"), cache.Policy{TTL: 5 * time.Minute}))

	for i := 0; i < 3; i++ {
		clock.Advance(time.Minute)
		_, ok, err := store.Get(ctx, "weather:paris")
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.Empty(t, cmds.expires)
}

func TestValkeyStoreMissesAndErrors(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cmds := newFakeCommands()
	store := newTestValkeyStore(cmds, clock)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	cmds.values["test:garbled"] = "not json"
	_, _, err = store.Get(ctx, "garbled")
	require.Error(t, err)

	require.NoError(t, store.Set(ctx, "weather:paris", []byte("sunny"), cache.Policy{TTL: time.Minute}))
	require.NoError(t, store.Delete(ctx, "weather:paris"))
	_, ok, err = store.Get(ctx, "weather:paris")
	require.NoError(t, err)
	require.False(t, ok)

	cmds.getErr = errors.New("connection refused")
	_, _, err = store.Get(ctx, "anything")
	require.ErrorIs(t, err, cmds.getErr)
}
