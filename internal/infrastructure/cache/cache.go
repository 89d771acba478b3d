// Package cache keeps short-lived receipt previews between the scan and the
// confirm step.
package cache

import (
	"context"
	"crypto/md5"
	"fmt"
	"sync"
	"time"
)

const (
	DefaultTTL     = 15 * time.Minute
	DefaultMaxSize = 500
)

type entry[V any] struct {
	value     V
	timestamp time.Time
}

// TTLCache bounded map with per-entry expiry; the oldest entry is evicted
// when full.
type TTLCache[V any] struct {
	mu      sync.RWMutex
	items   map[string]entry[V]
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	hits   int64
	misses int64
}

// New yangi kesh yaratish
func New[V any](ttl time.Duration, maxSize int) *TTLCache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &TTLCache[V]{
		items:   make(map[string]entry[V]),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns a live entry.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, exists := c.items[key]
	if !exists {
		c.misses++
		return zero, false
	}
	if c.now().Sub(e.timestamp) > c.ttl {
		delete(c.items, key)
		c.misses++
		return zero, false
	}
	c.hits++
	return e.value, true
}

// Set stores value under key.
func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		first := true
		for k, v := range c.items {
			if first || v.timestamp.Before(oldestTime) {
				oldestKey = k
				oldestTime = v.timestamp
				first = false
			}
		}
		delete(c.items, oldestKey)
	}
	c.items[key] = entry[V]{value: value, timestamp: c.now()}
}

// Delete kalitni o'chirish
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Take returns and removes the entry so a preview is applied at most once.
func (c *TTLCache[V]) Take(key string) (V, bool) {
	v, ok := c.Get(key)
	if ok {
		c.Delete(key)
	}
	return v, ok
}

// Purge drops expired entries and reports how many went.
func (c *TTLCache[V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.items {
		if now.Sub(e.timestamp) > c.ttl {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

// Run purges on every ttl tick until ctx ends.
func (c *TTLCache[V]) Run(ctx context.Context) {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Purge()
		}
	}
}

// Stats hits, misses, size
func (c *TTLCache[V]) Stats() (hits, misses int64, size int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses, len(c.items)
}

// Key fixed-length key from an owner id and the uploaded bytes.
func Key(owner string, data []byte) string {
	h := md5.New()
	h.Write([]byte(owner))
	h.Write([]byte{0})
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}
