// Package cache holds the in-memory expiring caches owned by the engine components
// and the on-disk directory used for downloaded bundle artifacts.
package cache

import (
	"sync"
	"time"

	"github.com/glorpus-work/hbpm/pkg/clock"
)

type entry[V any] struct {
	value   V
	tag     string
	expires time.Time
}

// TTL is a mutex-guarded map whose entries expire at an absolute time.
// An optional tag is stored with each entry; GetTagged treats a tag mismatch as a miss.
type TTL[K comparable, V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	clock   clock.Clock
	entries map[K]entry[V]
}

// NewTTL creates a cache whose entries live for ttl.
func NewTTL[K comparable, V any](ttl time.Duration, clk clock.Clock) *TTL[K, V] {
	if clk == nil {
		clk = clock.New()
	}
	return &TTL[K, V]{
		ttl:     ttl,
		clock:   clk,
		entries: make(map[K]entry[V]),
	}
}

// Get returns the value for key if present and not expired.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// GetTagged is Get that also drops the entry when it was stored under a different tag.
func (c *TTL[K, V]) GetTagged(key K, tag string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if e.tag != tag || !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Set stores value under key.
func (c *TTL[K, V]) Set(key K, value V) {
	c.SetTagged(key, "", value)
}

// SetTagged stores value under key with a tag checked by GetTagged.
func (c *TTL[K, V]) SetTagged(key K, tag string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, tag: tag, expires: c.clock.Now().Add(c.ttl)}
}

// Delete removes key.
func (c *TTL[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Purge removes every entry.
func (c *TTL[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]entry[V])
}

// Len returns the number of stored entries, expired ones included.
func (c *TTL[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
