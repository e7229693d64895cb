// Package livequery implements the polling query cache that keeps
// dashboard data fresh: stale-while-revalidate serving, per-key request
// coalescing, and background refresh per data class. The cache is an
// explicit component with an injected clock and fetch function so tests
// control time and network behavior deterministically.
package livequery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"tracelens/internal/telemetry"
)

// Kind identifies a cached data class. Freshness windows are assigned per
// kind: trace data turns over quickly, aggregate metrics slowly.
type Kind string

const (
	KindTraceList       Kind = "trace_list"
	KindTrace           Kind = "trace"
	KindAgentMetrics    Kind = "agent_metrics"
	KindWorkflowMetrics Kind = "workflow_metrics"
)

// Default freshness windows per data class.
const (
	DefaultTraceInterval   = 10 * time.Second
	DefaultMetricsInterval = 30 * time.Second
)

// Key identifies one cache slot.
type Key struct {
	Kind      Kind
	EntityID  string
	TimeRange string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Kind, k.EntityID, k.TimeRange)
}

// FetchFunc loads fresh data for a key from the backends.
type FetchFunc func(ctx context.Context, key Key) (any, error)

// Result is the tri-state view served to consumers. Data survives
// refresh failures: stale data with an error flag beats a blank state.
type Result struct {
	Data      any       `json:"data"`
	Err       error     `json:"-"`
	IsLoading bool      `json:"isLoading"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Options configures a Cache. Zero fields fall back to defaults.
type Options struct {
	// Intervals overrides the freshness window per kind.
	Intervals map[Kind]time.Duration
	// Now is the clock; defaults to time.Now.
	Now func() time.Time
	// Metrics receives cache instrumentation when set.
	Metrics *telemetry.Metrics
}

// Cache is a keyed stale-while-revalidate cache over a fetch function.
type Cache struct {
	fetch     FetchFunc
	intervals map[Kind]time.Duration
	now       func() time.Time
	metrics   *telemetry.Metrics

	group singleflight.Group

	mu      sync.Mutex
	entries map[Key]*entry
}

type entry struct {
	data       any
	hasData    bool
	err        error
	fetchedAt  time.Time
	refreshing bool
}

// New creates a cache over the given fetch function.
func New(fetch FetchFunc, opts Options) *Cache {
	intervals := map[Kind]time.Duration{
		KindTraceList:       DefaultTraceInterval,
		KindTrace:           DefaultTraceInterval,
		KindAgentMetrics:    DefaultMetricsInterval,
		KindWorkflowMetrics: DefaultMetricsInterval,
	}
	for kind, d := range opts.Intervals {
		intervals[kind] = d
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Cache{
		fetch:     fetch,
		intervals: intervals,
		now:       now,
		metrics:   opts.Metrics,
		entries:   make(map[Key]*entry),
	}
}

// Interval returns the refresh interval for a data kind.
func (c *Cache) Interval(kind Kind) time.Duration {
	if d, ok := c.intervals[kind]; ok {
		return d
	}
	return DefaultMetricsInterval
}

// Get serves the key's current value. A fresh entry is returned with no
// network call. A stale entry is returned immediately while a background
// revalidation runs. A missing entry blocks on exactly one fetch;
// concurrent callers for the same key attach to that in-flight fetch.
func (c *Cache) Get(ctx context.Context, key Key) Result {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && e.hasData {
		res := Result{Data: e.data, Err: e.err, UpdatedAt: e.fetchedAt}
		if c.now().Sub(e.fetchedAt) < c.Interval(key.Kind) {
			c.mu.Unlock()
			c.inc(keyHit, key)
			return res
		}
		// Stale: serve what we have and revalidate behind the scenes.
		res.IsLoading = true
		kick := !e.refreshing
		if kick {
			e.refreshing = true
		}
		c.mu.Unlock()
		c.inc(keyStale, key)
		if kick {
			go c.backgroundRefresh(context.WithoutCancel(ctx), key)
		}
		return res
	}
	c.mu.Unlock()

	c.inc(keyMiss, key)
	data, err := c.fetchShared(ctx, key)
	if err != nil {
		return Result{Err: err, UpdatedAt: c.now()}
	}
	return Result{Data: data, UpdatedAt: c.now()}
}

// Refresh forces a fetch for the key, bypassing freshness. Pollers call
// this on their interval; a failure leaves prior data in place and is
// reported through the error field.
func (c *Cache) Refresh(ctx context.Context, key Key) Result {
	data, err := c.fetchShared(ctx, key)
	if err == nil {
		return Result{Data: data, UpdatedAt: c.now()}
	}

	c.mu.Lock()
	e, ok := c.entries[key]
	stale := ok && e.hasData
	var staleData any
	var fetchedAt time.Time
	if stale {
		staleData = e.data
		fetchedAt = e.fetchedAt
	}
	c.mu.Unlock()

	if stale {
		return Result{Data: staleData, Err: err, UpdatedAt: fetchedAt}
	}
	return Result{Err: err, UpdatedAt: c.now()}
}

// Invalidate drops the key's entry; the next Get fetches.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// backgroundRefresh is the revalidation path for stale entries.
func (c *Cache) backgroundRefresh(ctx context.Context, key Key) {
	_, _ = c.fetchShared(ctx, key)
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.refreshing = false
	}
	c.mu.Unlock()
}

// fetchShared runs at most one fetch per key at a time and folds the
// outcome into the cache slot. On failure the slot keeps its previous
// data and records the error for the consumer's error flag.
func (c *Cache) fetchShared(ctx context.Context, key Key) (any, error) {
	start := c.now()
	data, err, shared := c.group.Do(key.String(), func() (any, error) {
		return c.fetch(ctx, key)
	})
	if shared {
		c.inc(keyCoalesced, key)
	} else if c.metrics != nil {
		c.metrics.FetchDuration.WithLabelValues(string(key.Kind)).Observe(c.now().Sub(start).Seconds())
	}
	if err != nil {
		c.inc(keyRefreshFail, key)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	if err != nil {
		e.err = err
		return nil, err
	}
	e.data = data
	e.hasData = true
	e.err = nil
	e.fetchedAt = c.now()
	return data, nil
}

type counterKind int

const (
	keyHit counterKind = iota
	keyMiss
	keyStale
	keyCoalesced
	keyRefreshFail
)

func (c *Cache) inc(which counterKind, key Key) {
	if c.metrics == nil {
		return
	}
	label := string(key.Kind)
	switch which {
	case keyHit:
		c.metrics.CacheHits.WithLabelValues(label).Inc()
	case keyMiss:
		c.metrics.CacheMisses.WithLabelValues(label).Inc()
	case keyStale:
		c.metrics.CacheStale.WithLabelValues(label).Inc()
	case keyCoalesced:
		c.metrics.Coalesced.WithLabelValues(label).Inc()
	case keyRefreshFail:
		c.metrics.RefreshFailures.WithLabelValues(label).Inc()
	}
}
