package livequery

import (
	"context"
	"log/slog"
	"time"
)

// Poller refreshes one key on its kind's interval for as long as the
// consuming view stays mounted (the context stays alive). Refresh
// failures are logged and surfaced through the result's error field;
// previously delivered data is never cleared.
type Poller struct {
	cache    *Cache
	key      Key
	interval time.Duration
	onUpdate func(Result)
	logger   *slog.Logger
}

// NewPoller creates a poller for the key. interval <= 0 uses the kind's
// configured interval.
func NewPoller(cache *Cache, key Key, interval time.Duration, onUpdate func(Result), logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = cache.Interval(key.Kind)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cache:    cache,
		key:      key,
		interval: interval,
		onUpdate: onUpdate,
		logger:   logger,
	}
}

// Run resolves the key immediately, then refetches on every tick until
// the context is canceled.
func (p *Poller) Run(ctx context.Context) {
	p.emit(p.cache.Get(ctx, p.key))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res := p.cache.Refresh(ctx, p.key)
			if res.Err != nil {
				p.logger.Warn("background refresh failed", "key", p.key.String(), "error", res.Err)
			}
			p.emit(res)
		}
	}
}

func (p *Poller) emit(res Result) {
	if p.onUpdate != nil {
		p.onUpdate(res)
	}
}
