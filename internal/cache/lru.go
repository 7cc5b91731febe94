package cache

import (
	"sync"
	"time"
)

// LRUCache keeps at most maxSize entries and drops the least recently used
// one on overflow. With ttl > 0 entries also age out ttl after their last Set.
type LRUCache[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	slots map[string]*slot[T]
	clock uint64
	stats Stats
}

type slot[T any] struct {
	data     T
	lastUsed uint64
	deadline time.Time
}

var _ Cache[int] = (*LRUCache[int])(nil)

// NewLRUCache returns an empty cache. maxSize below 1 means 1.
func NewLRUCache[T any](maxSize int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		maxSize: max(maxSize, 1),
		ttl:     ttl,
		now:     time.Now,
		slots:   make(map[string]*slot[T], max(maxSize, 1)),
	}
}

func (c *LRUCache[T]) stale(s *slot[T]) bool {
	return c.ttl > 0 && c.now().After(s.deadline)
}

// touch must be called with mu held.
func (c *LRUCache[T]) touch(s *slot[T]) {
	c.clock++
	s.lastUsed = c.clock
}

func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if ok && c.stale(s) {
		delete(c.slots, key)
		c.stats.Evictions++
		ok = false
	}
	if !ok {
		c.stats.Misses++
		var zero T
		return zero, false
	}
	c.stats.Hits++
	c.touch(s)
	return s.data, true
}

func (c *LRUCache[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.slots[key]
	if !ok {
		if len(c.slots) >= c.maxSize {
			c.evictOldest()
		}
		s = &slot[T]{}
		c.slots[key] = s
	}
	s.data = data
	if c.ttl > 0 {
		s.deadline = c.now().Add(c.ttl)
	}
	c.touch(s)
}

// evictOldest scans the slots; the caches here hold a handful of entries.
func (c *LRUCache[T]) evictOldest() {
	var (
		victim string
		oldest uint64
		found  bool
	)
	for k, s := range c.slots {
		if !found || s.lastUsed < oldest {
			victim, oldest, found = k, s.lastUsed, true
		}
	}
	if found {
		delete(c.slots, victim)
		c.stats.Evictions++
	}
}

func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	delete(c.slots, key)
	c.mu.Unlock()
}

func (c *LRUCache[T]) Purge() {
	c.mu.Lock()
	clear(c.slots)
	c.mu.Unlock()
}

// CleanExpired drops aged-out entries and returns how many it dropped.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, s := range c.slots {
		if c.stale(s) {
			delete(c.slots, k)
			n++
		}
	}
	c.stats.Evictions += uint64(n)
	return n
}

func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

func (c *LRUCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
