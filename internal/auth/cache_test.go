package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time        { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestCache(ttl time.Duration) (*Cache, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return NewCache(ttl, WithClock(clock.Now)), clock
}

func TestCachePutGet(t *testing.T) {
	cache, _ := newTestCache(time.Minute)
	cache.Put("user-1", NewSlugSet("orders:view"))

	slugs, ok := cache.Get("user-1")
	require.True(t, ok)
	assert.True(t, slugs.Has("orders:view"))

	_, ok = cache.Get("user-2")
	assert.False(t, ok)
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	cache, clock := newTestCache(time.Minute)
	cache.Put("user-1", NewSlugSet("orders:view"))

	clock.Advance(59 * time.Second)
	_, ok := cache.Get("user-1")
	assert.True(t, ok)

	clock.Advance(2 * time.Second)
	_, ok = cache.Get("user-1")
	assert.False(t, ok)
}

func TestCacheDefensiveCopies(t *testing.T) {
	cache, _ := newTestCache(time.Minute)

	in := NewSlugSet("orders:view")
	cache.Put("user-1", in)
	in.Add("orders:delete") // mutating the caller's set must not leak in

	out, ok := cache.Get("user-1")
	require.True(t, ok)
	assert.False(t, out.Has("orders:delete"))

	out.Add("orders:edit") // mutating the returned set must not leak back
	again, ok := cache.Get("user-1")
	require.True(t, ok)
	assert.False(t, again.Has("orders:edit"))
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(time.Minute)
	cache.Put("user-1", NewSlugSet("orders:view"))
	cache.Put("user-2", NewSlugSet("orders:view"))

	cache.Invalidate("user-1")

	_, ok := cache.Get("user-1")
	assert.False(t, ok)
	_, ok = cache.Get("user-2")
	assert.True(t, ok)
}

func TestCacheFlush(t *testing.T) {
	cache, _ := newTestCache(time.Minute)
	cache.Put("user-1", NewSlugSet("orders:view"))
	cache.Put("user-2", NewSlugSet("orders:edit"))

	cache.Flush()

	_, ok := cache.Get("user-1")
	assert.False(t, ok)
	_, ok = cache.Get("user-2")
	assert.False(t, ok)
}

func TestCacheLastWriteWins(t *testing.T) {
	cache, _ := newTestCache(time.Minute)
	cache.Put("user-1", NewSlugSet("orders:view"))
	cache.Put("user-1", NewSlugSet("orders:edit"))

	slugs, ok := cache.Get("user-1")
	require.True(t, ok)
	assert.False(t, slugs.Has("orders:view"))
	assert.True(t, slugs.Has("orders:edit"))
}

func TestCacheSweepDropsExpired(t *testing.T) {
	cache, clock := newTestCache(time.Minute)
	cache.Put("stale", NewSlugSet("orders:view"))

	clock.Advance(2 * time.Minute)
	cache.Put("fresh", NewSlugSet("orders:view"))
	cache.sweep()

	cache.mu.RLock()
	_, staleKept := cache.entries["stale"]
	_, freshKept := cache.entries["fresh"]
	cache.mu.RUnlock()

	assert.False(t, staleKept)
	assert.True(t, freshKept)
}

func TestCacheIgnoresNilAndEmpty(t *testing.T) {
	cache, _ := newTestCache(time.Minute)

	cache.Put("", NewSlugSet("orders:view"))
	cache.Put("user-1", nil)

	_, ok := cache.Get("")
	assert.False(t, ok)
	_, ok = cache.Get("user-1")
	assert.False(t, ok)
}
