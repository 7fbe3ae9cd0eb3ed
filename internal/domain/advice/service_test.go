package advice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/wearcast/internal/domain/weather"
	"github.com/yanqian/wearcast/internal/infra/cachestore"
)

type stubProvider struct {
	name    string
	replies []string
	err     error
	calls   int
	log     *[]string
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Generate(_ context.Context, _ weather.Snapshot, prompt string) (string, error) {
	p.calls++
	if p.log != nil {
		*p.log = append(*p.log, p.name)
	}
	if p.err != nil {
		return "", p.err
	}
	if len(p.replies) == 0 {
		return "", nil
	}
	reply := p.replies[0]
	if len(p.replies) > 1 {
		p.replies = p.replies[1:]
	}
	return reply, nil
}

type wordCounter struct{}

func (wordCounter) Count(text string) (int, bool) { return 42, true }

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestService(store *cachestore.MemoryStore, providers ...Provider) Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(Config{}, providers, NewPromptBuilder(nil, logger), wordCounter{}, store, logger)
}

var paris = weather.Snapshot{City: "Paris", Country: "FR", Temperature: 21.4, Condition: "Clear", AQI: 2}

const validAdvice = `{"summary":"Mild and sunny","outfit":"Light jacket","safety":"Sunscreen"}`

func TestAdviseFallsBackInOrder(t *testing.T) {
	var order []string
	a := &stubProvider{name: "a", err: errors.New("upstream 500"), log: &order}
	b := &stubProvider{name: "b", replies: []string{validAdvice}, log: &order}
	c := &stubProvider{name: "c", replies: []string{validAdvice}, log: &order}
	svc := newTestService(cachestore.NewMemoryStore(), a, b, c)

	res := svc.Advise(context.Background(), paris)

	require.Equal(t, "b", res.Provider)
	require.False(t, res.Cached)
	require.Equal(t, Advice{Summary: "Mild and sunny", Outfit: "Light jacket", Safety: "Sunscreen"}, res.Advice)
	require.Equal(t, []string{"a", "b"}, order)
	require.Equal(t, 1, a.calls)
	require.Zero(t, c.calls)
	require.Equal(t, 42, res.Usage.PromptTokens)
	require.True(t, res.Usage.Estimated)
}

func TestAdviseSkipsAbsentAndMalformedProviders(t *testing.T) {
	absent := &stubProvider{name: "absent"}
	garbled := &stubProvider{name: "garbled", replies: []string{"sorry, I cannot help with that"}}
	nested := &stubProvider{name: "nested", replies: []string{`{"summary":"x","outfit":{"top":"shirt"},"safety":"y"}`}}
	good := &stubProvider{name: "good", replies: []string{"Sure!\n```json\n" + validAdvice + "\n```\nEnjoy."}}
	svc := newTestService(cachestore.NewMemoryStore(), absent, garbled, nested, good)

	res := svc.Advise(context.Background(), paris)

	require.Equal(t, "good", res.Provider)
	require.Equal(t, "Light jacket", res.Advice.Outfit)
	require.Equal(t, 1, absent.calls)
	require.Equal(t, 1, garbled.calls)
	require.Equal(t, 1, nested.calls)
}

func TestAdviseServesCacheForNearbyTemperatures(t *testing.T) {
	provider := &stubProvider{name: "p", replies: []string{validAdvice}}
	svc := newTestService(cachestore.NewMemoryStore(), provider)
	ctx := context.Background()

	first := svc.Advise(ctx, paris)
	warmer := paris
	warmer.Temperature = 22.4
	warmer.City = "PARIS"
	second := svc.Advise(ctx, warmer)

	require.False(t, first.Cached)
	require.True(t, second.Cached)
	require.Equal(t, first.Advice, second.Advice)
	require.Equal(t, "p", second.Provider)
	require.Equal(t, 1, provider.calls)
}

func TestAdviseFallbackIsCachedBriefly(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	store := cachestore.NewMemoryStore().WithClock(clock.Now)
	failing := &stubProvider{name: "failing", err: errors.New("timeout")}
	absent := &stubProvider{name: "absent"}
	svc := newTestService(store, failing, absent)
	ctx := context.Background()

	res := svc.Advise(ctx, paris)
	require.Equal(t, FallbackProvider, res.Provider)
	require.Contains(t, res.Advice.Summary, "Paris")
	require.NotEmpty(t, res.Advice.Outfit)
	require.NotEmpty(t, res.Advice.Safety)
	require.Equal(t, 1, failing.calls)

	clock.now = clock.now.Add(119 * time.Second)
	res = svc.Advise(ctx, paris)
	require.True(t, res.Cached)
	require.Equal(t, FallbackProvider, res.Provider)
	require.Equal(t, 1, failing.calls)
	require.Equal(t, 1, absent.calls)

	clock.now = clock.now.Add(time.Second)
	res = svc.Advise(ctx, paris)
	require.False(t, res.Cached)
	require.Equal(t, 2, failing.calls)
	require.Equal(t, 2, absent.calls)
}

func TestAdviseSuccessUsesSlidingWindow(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	store := cachestore.NewMemoryStore().WithClock(clock.Now)
	provider := &stubProvider{name: "p", replies: []string{validAdvice}}
	svc := newTestService(store, provider)
	ctx := context.Background()

	svc.Advise(ctx, paris)
	clock.now = clock.now.Add(5 * time.Minute)
	res := svc.Advise(ctx, paris)
	require.False(t, res.Cached, "idle for the whole sliding window")
	require.Equal(t, 2, provider.calls)
}

func TestAdviseWithNoProviders(t *testing.T) {
	svc := newTestService(cachestore.NewMemoryStore())
	res := svc.Advise(context.Background(), weather.Snapshot{})
	require.Equal(t, FallbackProvider, res.Provider)
	require.Contains(t, res.Advice.Summary, "your area")
}

func TestCacheKeyBuckets(t *testing.T) {
	require.Equal(t, "advice:paris:clear:20", CacheKey(weather.Snapshot{City: " Paris ", Condition: "Clear", Temperature: 21.4}))
	require.Equal(t, "advice:paris:clear:25", CacheKey(weather.Snapshot{City: "paris", Condition: "CLEAR", Temperature: 22.6}))
	require.Equal(t, "advice:oslo:snow:-5", CacheKey(weather.Snapshot{City: "Oslo", Condition: "Snow", Temperature: -6}))
}
