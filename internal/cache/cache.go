// Package cache holds small in-process caches used in front of the record
// stores.
package cache

// Cache is a keyed cache safe for concurrent use.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// Purge drops every entry.
	Purge()
	Size() int
}

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits   uint64
	Misses uint64
	// Evictions counts entries dropped for space or age, not Delete or Purge.
	Evictions uint64
}
