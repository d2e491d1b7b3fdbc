package storage

import (
	"context"
	"log/slog"
	"time"

	"passvault/internal/logging"
)

const drainTimeout = 5 * time.Second

// Cleaner deletes discarded images in the background. Discard never blocks the caller;
// when the queue is full the image is left behind and a warning is logged.
type Cleaner struct {
	store     ObjectStore
	queue     chan string
	protected map[string]struct{}
	logger    *slog.Logger
}

// NewCleaner creates a Cleaner. URLs listed in protected (the placeholders) are never
// deleted.
func NewCleaner(store ObjectStore, size int, logger *slog.Logger, protected ...string) *Cleaner {
	if size <= 0 {
		size = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := make(map[string]struct{}, len(protected))
	for _, url := range protected {
		p[url] = struct{}{}
	}
	return &Cleaner{
		store:     store,
		queue:     make(chan string, size),
		protected: p,
		logger:    logger,
	}
}

// Discard schedules deletion of the object behind url. Empty, protected and foreign
// URLs are ignored. It reports whether a deletion was queued.
func (c *Cleaner) Discard(url string) bool {
	if url == "" {
		return false
	}
	if _, ok := c.protected[url]; ok {
		return false
	}
	key, ok := c.store.KeyFromURL(url)
	if !ok {
		return false
	}

	select {
	case c.queue <- key:
		return true
	default:
		c.logger.Warn("image cleanup queue full, dropping", "key", key)
		return false
	}
}

// Run processes the queue until ctx is cancelled, then makes one bounded pass over
// whatever is still queued.
func (c *Cleaner) Run(ctx context.Context) {
	for {
		select {
		case key := <-c.queue:
			c.delete(ctx, key)
		case <-ctx.Done():
			c.drain(ctx)
			return
		}
	}
}

func (c *Cleaner) drain(ctx context.Context) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
	defer cancel()
	for {
		select {
		case key := <-c.queue:
			c.delete(dctx, key)
		default:
			return
		}
	}
}

func (c *Cleaner) delete(ctx context.Context, key string) {
	if err := c.store.Delete(ctx, key); err != nil {
		logging.LogError(ctx, c.logger, "failed to delete discarded image", err)
		return
	}
	c.logger.DebugContext(ctx, "discarded image deleted", "key", key)
}
