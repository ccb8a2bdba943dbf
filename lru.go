package lru

import (
	"sync"

	"github.com/venkatsvpr/lrucache/simplelru"
)

const (
	// DefaultEvictedBufferSize defines the default buffer size to store evicted key/val
	DefaultEvictedBufferSize = 16
)

type evictedEntry[K comparable, V any] struct {
	key   K
	value V
}

// Cache is a thread-safe fixed size LRU cache.
//
// Every method takes the same exclusive lock; lookups included, since Get
// reorders the recency list. Eviction callbacks run after the lock has been
// released, so they may call back into the cache.
type Cache[K comparable, V any] struct {
	lru         *simplelru.LRU[K, V]
	evicted     []evictedEntry[K, V]
	onEvictedCB func(key K, value V)
	lock        sync.Mutex
}

// New creates an LRU of the given size.
func New[K comparable, V any](size int) (*Cache[K, V], error) {
	return NewWithEvict[K, V](size, nil)
}

// NewWithEvict constructs a fixed size cache with the given eviction
// callback.
func NewWithEvict[K comparable, V any](size int, onEvicted func(key K, value V)) (c *Cache[K, V], err error) {
	// create a cache with default settings
	c = &Cache[K, V]{
		onEvictedCB: onEvicted,
	}
	var record simplelru.EvictCallback[K, V]
	if onEvicted != nil {
		c.initEvictBuffers()
		record = c.onEvicted
	}
	c.lru, err = simplelru.NewLRU(size, record)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Cache[K, V]) initEvictBuffers() {
	c.evicted = make([]evictedEntry[K, V], 0, DefaultEvictedBufferSize)
}

// onEvicted saves evicted key/val while the lock is held.
func (c *Cache[K, V]) onEvicted(k K, v V) {
	c.evicted = append(c.evicted, evictedEntry[K, V]{key: k, value: v})
}

// takeEvicted hands the pending evictions to the caller. Has to be called with lock!
func (c *Cache[K, V]) takeEvicted() []evictedEntry[K, V] {
	if len(c.evicted) == 0 {
		return nil
	}
	out := c.evicted
	c.initEvictBuffers()
	return out
}

// notify sends evictions to the externally registered callback outside the
// critical section.
func (c *Cache[K, V]) notify(evicted []evictedEntry[K, V]) {
	for _, e := range evicted {
		c.onEvictedCB(e.key, e.value)
	}
}

// Purge is used to completely clear the cache.
func (c *Cache[K, V]) Purge() {
	c.notify(c.purge())
}

func (c *Cache[K, V]) purge() []evictedEntry[K, V] {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.lru.Purge()
	return c.takeEvicted()
}

// Add adds a value to the cache. Returns true if an eviction occurred.
func (c *Cache[K, V]) Add(key K, value V) (evicted bool) {
	evicted, pending := c.add(key, value)
	c.notify(pending)
	return evicted
}

func (c *Cache[K, V]) add(key K, value V) (bool, []evictedEntry[K, V]) {
	c.lock.Lock()
	defer c.lock.Unlock()
	evicted := c.lru.Add(key, value)
	return evicted, c.takeEvicted()
}

// Get looks up a key's value from the cache.
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.Get(key)
}

// Contains checks if a key is in the cache, without updating the
// recent-ness or deleting it for being stale.
func (c *Cache[K, V]) Contains(key K) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.Contains(key)
}

// Peek returns the key value (or undefined if not found) without updating
// the "recently used"-ness of the key.
func (c *Cache[K, V]) Peek(key K) (value V, ok bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.Peek(key)
}

// ContainsOrAdd checks if a key is in the cache without updating the
// recent-ness or deleting it for being stale, and if not, adds the value.
// Returns whether found and whether an eviction occurred.
func (c *Cache[K, V]) ContainsOrAdd(key K, value V) (ok, evicted bool) {
	ok, evicted, pending := c.containsOrAdd(key, value)
	c.notify(pending)
	return ok, evicted
}

func (c *Cache[K, V]) containsOrAdd(key K, value V) (bool, bool, []evictedEntry[K, V]) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.lru.Contains(key) {
		return true, false, nil
	}
	evicted := c.lru.Add(key, value)
	return false, evicted, c.takeEvicted()
}

// PeekOrAdd checks if a key is in the cache without updating the
// recent-ness or deleting it for being stale, and if not, adds the value.
// Returns whether found and whether an eviction occurred.
func (c *Cache[K, V]) PeekOrAdd(key K, value V) (previous V, ok, evicted bool) {
	previous, ok, evicted, pending := c.peekOrAdd(key, value)
	c.notify(pending)
	return previous, ok, evicted
}

func (c *Cache[K, V]) peekOrAdd(key K, value V) (previous V, ok, evicted bool, pending []evictedEntry[K, V]) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if previous, ok = c.lru.Peek(key); ok {
		return previous, true, false, nil
	}
	evicted = c.lru.Add(key, value)
	return previous, false, evicted, c.takeEvicted()
}

// Update runs fn with the current value of key (found reports whether it
// was present) and stores the result as the key's new, most recently used
// value. The read and the write happen under one lock acquisition, so
// read-modify-write sequences such as counters are not lost to concurrent
// callers. fn must not call into the cache.
func (c *Cache[K, V]) Update(key K, fn func(old V, found bool) V) (value V, evicted bool) {
	value, evicted, pending := c.update(key, fn)
	c.notify(pending)
	return value, evicted
}

func (c *Cache[K, V]) update(key K, fn func(old V, found bool) V) (V, bool, []evictedEntry[K, V]) {
	c.lock.Lock()
	defer c.lock.Unlock()
	old, found := c.lru.Peek(key)
	value := fn(old, found)
	evicted := c.lru.Add(key, value)
	return value, evicted, c.takeEvicted()
}

// Remove removes the provided key from the cache.
func (c *Cache[K, V]) Remove(key K) (present bool) {
	present, pending := c.remove(key)
	c.notify(pending)
	return present
}

func (c *Cache[K, V]) remove(key K) (bool, []evictedEntry[K, V]) {
	c.lock.Lock()
	defer c.lock.Unlock()
	present := c.lru.Remove(key)
	return present, c.takeEvicted()
}

// Resize changes the cache size.
func (c *Cache[K, V]) Resize(size int) (evicted int) {
	evicted, pending := c.resize(size)
	c.notify(pending)
	return evicted
}

func (c *Cache[K, V]) resize(size int) (int, []evictedEntry[K, V]) {
	c.lock.Lock()
	defer c.lock.Unlock()
	evicted := c.lru.Resize(size)
	return evicted, c.takeEvicted()
}

// RemoveOldest removes the oldest item from the cache.
func (c *Cache[K, V]) RemoveOldest() (key K, value V, ok bool) {
	key, value, ok, pending := c.removeOldest()
	c.notify(pending)
	return key, value, ok
}

func (c *Cache[K, V]) removeOldest() (key K, value V, ok bool, pending []evictedEntry[K, V]) {
	c.lock.Lock()
	defer c.lock.Unlock()
	key, value, ok = c.lru.RemoveOldest()
	return key, value, ok, c.takeEvicted()
}

// GetOldest returns the oldest entry
func (c *Cache[K, V]) GetOldest() (key K, value V, ok bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.GetOldest()
}

// Keys returns a slice of the keys in the cache, from oldest to newest.
func (c *Cache[K, V]) Keys() []K {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.Keys()
}

// Values returns a slice of the values in the cache, from oldest to newest.
func (c *Cache[K, V]) Values() []V {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.Values()
}

// Len returns the number of items in the cache.
func (c *Cache[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.Len()
}

// Empty reports whether the cache holds no items.
func (c *Cache[K, V]) Empty() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.Empty()
}

// Cap returns the capacity of the cache.
func (c *Cache[K, V]) Cap() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.lru.Cap()
}
