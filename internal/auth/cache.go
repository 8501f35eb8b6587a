package auth

import (
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a resolved permission set may be served
// without going back to the store.
const DefaultCacheTTL = 120 * time.Second

type cacheEntry struct {
	slugs     SlugSet
	expiresAt time.Time
}

// Cache maps user id to resolved permission slugs with a fixed TTL. Expiry is
// passive on read plus a periodic sweep at half the TTL. Values are copied on
// the way in and out, so cached sets are immutable snapshots.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// CacheOption customizes a Cache; used by tests to inject a fake clock.
type CacheOption func(*Cache)

func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache builds a cache with the given TTL. Non-positive TTLs fall back to
// the default. The background sweep starts on first use of StartSweeper.
func NewCache(ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the cached set for userID, or ok=false on miss or
// expiry.
func (c *Cache) Get(userID string) (SlugSet, bool) {
	if userID == "" {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		c.Invalidate(userID)
		return nil, false
	}
	return entry.slugs.Clone(), true
}

// Put stores a copy of slugs for userID. Concurrent puts for the same user
// are last-write-wins; resolution is idempotent so this is harmless.
func (c *Cache) Put(userID string, slugs SlugSet) {
	if userID == "" || slugs == nil {
		return
	}

	c.mu.Lock()
	c.entries[userID] = cacheEntry{
		slugs:     slugs.Clone(),
		expiresAt: c.now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// Invalidate drops the entry for userID, if any.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// StartSweeper launches the periodic expiry sweep at half the TTL, with a
// 30 second floor. Stop terminates it.
func (c *Cache) StartSweeper() {
	interval := c.ttl / 2
	if interval < 30*time.Second {
		interval = 30 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.sweep()
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop terminates the sweeper goroutine. Safe to call more than once.
func (c *Cache) Stop() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) sweep() {
	now := c.now()
	c.mu.Lock()
	for userID, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, userID)
		}
	}
	c.mu.Unlock()
}
