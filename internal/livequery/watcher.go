package livequery

import (
	"context"
	"sync"
)

// Watcher tracks a single consumer's active key (e.g. the agent currently
// selected in the dashboard). When the key changes before an earlier
// fetch resolves, the superseded result is discarded on arrival: every
// completion is guarded by an "is this still the active key" generation
// check, so a previous entity's data never surfaces for the new one.
type Watcher struct {
	cache *Cache

	mu  sync.Mutex
	gen uint64
	key Key

	updates chan Result
}

// NewWatcher creates a watcher over the cache.
func NewWatcher(cache *Cache) *Watcher {
	return &Watcher{
		cache:   cache,
		updates: make(chan Result, 1),
	}
}

// Updates delivers results for the active key. The channel holds the
// latest result only; a slow consumer sees the newest state, not a
// backlog.
func (w *Watcher) Updates() <-chan Result {
	return w.updates
}

// Key returns the active key.
func (w *Watcher) Key() Key {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.key
}

// SetKey switches the active key and resolves it asynchronously. Results
// from fetches started under a previous key are dropped.
func (w *Watcher) SetKey(ctx context.Context, key Key) {
	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.key = key
	w.mu.Unlock()

	go func() {
		res := w.cache.Get(ctx, key)
		w.deliver(gen, res)
	}()
}

// Refresh re-resolves the active key, keeping the generation. Pollers use
// this between key changes.
func (w *Watcher) Refresh(ctx context.Context) {
	w.mu.Lock()
	gen := w.gen
	key := w.key
	w.mu.Unlock()
	if gen == 0 {
		return
	}

	go func() {
		res := w.cache.Refresh(ctx, key)
		w.deliver(gen, res)
	}()
}

// deliver publishes a result unless the key changed since the fetch
// started. Latest result wins over an unconsumed older one.
func (w *Watcher) deliver(gen uint64, res Result) {
	w.mu.Lock()
	stale := gen != w.gen
	w.mu.Unlock()
	if stale {
		return
	}

	for {
		select {
		case w.updates <- res:
			return
		default:
		}
		select {
		case <-w.updates:
		default:
		}
	}
}
