package livequery

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for deterministic freshness
// checks.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestGetServesFreshWithoutFetching(t *testing.T) {
	clock := newFakeClock()
	var calls atomic.Int64
	cache := New(func(ctx context.Context, key Key) (any, error) {
		calls.Add(1)
		return "payload", nil
	}, Options{Now: clock.Now})

	key := Key{Kind: KindTrace, EntityID: "t-1"}

	res := cache.Get(context.Background(), key)
	require.NoError(t, res.Err)
	assert.Equal(t, "payload", res.Data)
	assert.False(t, res.IsLoading)
	assert.Equal(t, int64(1), calls.Load())

	// Within the freshness window: served from memory, no fetch.
	clock.Advance(5 * time.Second)
	res = cache.Get(context.Background(), key)
	assert.Equal(t, "payload", res.Data)
	assert.False(t, res.IsLoading)
	assert.Equal(t, int64(1), calls.Load())
}

func TestGetServesStaleWhileRevalidating(t *testing.T) {
	clock := newFakeClock()
	var calls atomic.Int64
	refreshed := make(chan struct{})
	cache := New(func(ctx context.Context, key Key) (any, error) {
		if calls.Add(1) == 2 {
			defer close(refreshed)
			return "new", nil
		}
		return "old", nil
	}, Options{Now: clock.Now})

	key := Key{Kind: KindTrace, EntityID: "t-1"}
	cache.Get(context.Background(), key)

	clock.Advance(DefaultTraceInterval + time.Second)
	res := cache.Get(context.Background(), key)
	// The stale value comes back immediately, flagged as refreshing.
	assert.Equal(t, "old", res.Data)
	assert.True(t, res.IsLoading)

	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("background refresh never ran")
	}

	require.Eventually(t, func() bool {
		return cache.Get(context.Background(), key).Data == "new"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGetCoalescesConcurrentFetches(t *testing.T) {
	var calls atomic.Int64
	gate := make(chan struct{})
	cache := New(func(ctx context.Context, key Key) (any, error) {
		calls.Add(1)
		<-gate
		return "payload", nil
	}, Options{})

	key := Key{Kind: KindAgentMetrics, EntityID: "agent-1", TimeRange: "24h"}

	var wg sync.WaitGroup
	results := make([]Result, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Get(context.Background(), key)
		}(i)
	}

	// Let every caller reach the in-flight fetch before it resolves.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
	for _, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, "payload", res.Data)
	}
}

func TestRefreshFailureKeepsStaleData(t *testing.T) {
	clock := newFakeClock()
	var fail atomic.Bool
	cache := New(func(ctx context.Context, key Key) (any, error) {
		if fail.Load() {
			return nil, errors.New("backend down")
		}
		return "payload", nil
	}, Options{Now: clock.Now})

	key := Key{Kind: KindWorkflowMetrics, EntityID: "wf-1", TimeRange: "24h"}
	first := cache.Get(context.Background(), key)
	require.NoError(t, first.Err)

	fail.Store(true)
	res := cache.Refresh(context.Background(), key)
	assert.Equal(t, "payload", res.Data)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "backend down")
}

func TestGetErrorWithNoDataSurfaces(t *testing.T) {
	cache := New(func(ctx context.Context, key Key) (any, error) {
		return nil, errors.New("backend down")
	}, Options{})

	res := cache.Get(context.Background(), Key{Kind: KindTrace, EntityID: "t-1"})
	assert.Nil(t, res.Data)
	require.Error(t, res.Err)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	var calls atomic.Int64
	cache := New(func(ctx context.Context, key Key) (any, error) {
		return calls.Add(1), nil
	}, Options{})

	key := Key{Kind: KindTraceList, EntityID: "limit=20&offset=0"}
	cache.Get(context.Background(), key)
	cache.Invalidate(key)

	res := cache.Get(context.Background(), key)
	assert.Equal(t, int64(2), res.Data)
	assert.Equal(t, int64(2), calls.Load())
}

func TestIntervalPerKind(t *testing.T) {
	cache := New(nil, Options{
		Intervals: map[Kind]time.Duration{KindTrace: 3 * time.Second},
	})
	assert.Equal(t, 3*time.Second, cache.Interval(KindTrace))
	assert.Equal(t, DefaultTraceInterval, cache.Interval(KindTraceList))
	assert.Equal(t, DefaultMetricsInterval, cache.Interval(KindAgentMetrics))
}
