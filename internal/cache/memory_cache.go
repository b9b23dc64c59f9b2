package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// cacheItem represents an item in the memory cache
type cacheItem struct {
	value      []byte
	expiration time.Time
}

// MemoryCache implements Cache interface using in-memory storage
type MemoryCache struct {
	mutex         sync.RWMutex
	items         map[string]*cacheItem
	maxMemory     int64
	currentMemory int64
	hits          int64
	misses        int64
	evictions     int64
	clock         clockwork.Clock
	done          chan struct{}
	closeOnce     sync.Once
	closed        bool
}

// NewMemoryCache creates a new in-memory cache. A zero cleanupInterval disables
// the background sweep; expired entries are still dropped on read.
func NewMemoryCache(maxMemory int64, cleanupInterval time.Duration) *MemoryCache {
	return NewMemoryCacheWithClock(maxMemory, cleanupInterval, clockwork.NewRealClock())
}

// NewMemoryCacheWithClock is NewMemoryCache with an injectable clock (tests use a fake one)
func NewMemoryCacheWithClock(maxMemory int64, cleanupInterval time.Duration, clock clockwork.Clock) *MemoryCache {
	c := &MemoryCache{
		items:     make(map[string]*cacheItem),
		maxMemory: maxMemory,
		clock:     clock,
		done:      make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.startCleanup(cleanupInterval)
	}
	return c
}

// Get retrieves a value from cache
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return nil, ErrCacheDisabled
	}

	item, exists := c.items[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, ErrKeyNotFound
	}
	if !c.clock.Now().Before(item.expiration) {
		atomic.AddInt64(&c.misses, 1)
		c.removeLocked(key, item)
		return nil, ErrKeyNotFound
	}

	atomic.AddInt64(&c.hits, 1)
	result := make([]byte, len(item.value))
	copy(result, item.value)
	return result, nil
}

// Set stores a value in cache with expiration
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return ErrCacheDisabled
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	item := &cacheItem{value: valueCopy, expiration: c.clock.Now().Add(ttl)}

	if old, ok := c.items[key]; ok {
		c.removeLocked(key, old)
	}
	c.items[key] = item
	c.currentMemory += itemSize(key, item)
	c.evictIfNeeded(key)
	return nil
}

// Delete removes a value from cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if item, ok := c.items[key]; ok {
		c.removeLocked(key, item)
	}
	return nil
}

// Exists checks if a live key exists in cache
func (c *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, ok := c.items[key]
	return ok && c.clock.Now().Before(item.expiration), nil
}

// Close stops the cleanup goroutine and drops all entries
func (c *MemoryCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mutex.Lock()
		c.closed = true
		c.items = make(map[string]*cacheItem)
		c.currentMemory = 0
		c.mutex.Unlock()
	})
	return nil
}

// Stats returns cache statistics
func (c *MemoryCache) Stats() CacheStats {
	c.mutex.RLock()
	keys := int64(len(c.items))
	memory := c.currentMemory
	c.mutex.RUnlock()

	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	return CacheStats{
		Hits:        hits,
		Misses:      misses,
		HitRatio:    hitRatio(hits, misses),
		Keys:        keys,
		MemoryUsage: memory,
		Evictions:   atomic.LoadInt64(&c.evictions),
	}
}

func (c *MemoryCache) startCleanup(interval time.Duration) {
	for {
		select {
		case <-c.done:
			return
		case <-c.clock.After(interval):
			c.cleanupExpired()
		}
	}
}

func (c *MemoryCache) cleanupExpired() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.clock.Now()
	for key, item := range c.items {
		if !now.Before(item.expiration) {
			c.removeLocked(key, item)
		}
	}
}

// evictIfNeeded drops the entries closest to expiry until usage fits maxMemory.
// The key just written is never evicted.
func (c *MemoryCache) evictIfNeeded(keep string) {
	if c.maxMemory <= 0 {
		return
	}
	for c.currentMemory > c.maxMemory {
		var victim string
		var victimItem *cacheItem
		for key, item := range c.items {
			if key == keep {
				continue
			}
			if victimItem == nil || item.expiration.Before(victimItem.expiration) {
				victim, victimItem = key, item
			}
		}
		if victimItem == nil {
			return
		}
		c.removeLocked(victim, victimItem)
		atomic.AddInt64(&c.evictions, 1)
	}
}

func (c *MemoryCache) removeLocked(key string, item *cacheItem) {
	delete(c.items, key)
	c.currentMemory -= itemSize(key, item)
}

func itemSize(key string, item *cacheItem) int64 {
	// key + value + rough fixed overhead for the expiration and map slot
	return int64(len(key) + len(item.value) + 64)
}
