package simplelru

import (
	"errors"
)

// ErrNegativeSize is returned when an LRU is constructed with a negative size.
var ErrNegativeSize = errors.New("must provide a non-negative size")

// EvictCallback is used to get a callback when a cache entry is evicted
type EvictCallback[K comparable, V any] func(key K, value V)

// LRU implements a non-thread safe fixed size LRU cache
type LRU[K comparable, V any] struct {
	size      int
	evictList *lruList[K, V]
	items     map[K]int
	onEvict   EvictCallback[K, V]
}

// NewLRU constructs an LRU of the given size. A size of zero is valid and
// yields a cache that evicts every entry as soon as it is added.
func NewLRU[K comparable, V any](size int, onEvict EvictCallback[K, V]) (*LRU[K, V], error) {
	if size < 0 {
		return nil, ErrNegativeSize
	}
	c := &LRU[K, V]{
		size:      size,
		evictList: newList[K, V](),
		items:     make(map[K]int),
		onEvict:   onEvict,
	}
	return c, nil
}

// Purge is used to completely clear the cache.
func (c *LRU[K, V]) Purge() {
	if c.onEvict != nil {
		for i := c.evictList.back(); i != 0; i = c.evictList.at(i).prev {
			ent := c.evictList.at(i)
			c.onEvict(ent.key, ent.value)
		}
	}
	clear(c.items)
	c.evictList.init()
}

// Add adds a value to the cache. Returns true if an eviction occurred.
func (c *LRU[K, V]) Add(key K, value V) (evicted bool) {
	// Check for existing item
	if i, ok := c.items[key]; ok {
		c.evictList.moveToFront(i)
		c.evictList.at(i).value = value
		return false
	}

	// Add new item
	c.items[key] = c.evictList.pushFront(key, value)

	// Verify size not exceeded
	for c.evictList.length() > c.size {
		c.removeOldest()
		evicted = true
	}
	return evicted
}

// Get looks up a key's value from the cache and marks it as the most
// recently used.
func (c *LRU[K, V]) Get(key K) (value V, ok bool) {
	i, ok := c.items[key]
	if !ok {
		return value, false
	}
	c.evictList.moveToFront(i)
	return c.evictList.at(i).value, true
}

// Contains checks if a key is in the cache, without updating the recent-ness
// or deleting it for being stale.
func (c *LRU[K, V]) Contains(key K) (ok bool) {
	_, ok = c.items[key]
	return ok
}

// Peek returns the key value (or undefined if not found) without updating
// the "recently used"-ness of the key.
func (c *LRU[K, V]) Peek(key K) (value V, ok bool) {
	i, ok := c.items[key]
	if !ok {
		return value, false
	}
	return c.evictList.at(i).value, true
}

// Remove removes the provided key from the cache, returning if the
// key was contained.
func (c *LRU[K, V]) Remove(key K) (present bool) {
	if i, ok := c.items[key]; ok {
		c.removeElement(i)
		return true
	}
	return false
}

// RemoveOldest removes the oldest item from the cache.
func (c *LRU[K, V]) RemoveOldest() (key K, value V, ok bool) {
	if i := c.evictList.back(); i != 0 {
		key, value = c.removeElement(i)
		return key, value, true
	}
	return key, value, false
}

// GetOldest returns the oldest entry
func (c *LRU[K, V]) GetOldest() (key K, value V, ok bool) {
	if i := c.evictList.back(); i != 0 {
		ent := c.evictList.at(i)
		return ent.key, ent.value, true
	}
	return key, value, false
}

// Keys returns a slice of the keys in the cache, from oldest to newest.
func (c *LRU[K, V]) Keys() []K {
	keys := make([]K, 0, c.evictList.length())
	for i := c.evictList.back(); i != 0; i = c.evictList.at(i).prev {
		keys = append(keys, c.evictList.at(i).key)
	}
	return keys
}

// Values returns a slice of the values in the cache, from oldest to newest.
func (c *LRU[K, V]) Values() []V {
	values := make([]V, 0, c.evictList.length())
	for i := c.evictList.back(); i != 0; i = c.evictList.at(i).prev {
		values = append(values, c.evictList.at(i).value)
	}
	return values
}

// Len returns the number of items in the cache.
func (c *LRU[K, V]) Len() int {
	return c.evictList.length()
}

// Empty reports whether the cache holds no items.
func (c *LRU[K, V]) Empty() bool {
	return c.evictList.length() == 0
}

// Cap returns the capacity of the cache.
func (c *LRU[K, V]) Cap() int {
	return c.size
}

// Resize changes the cache size, evicting the oldest entries when the new
// size is smaller than the current length. A negative size is treated as 0.
func (c *LRU[K, V]) Resize(size int) (evicted int) {
	if size < 0 {
		size = 0
	}
	diff := c.Len() - size
	if diff < 0 {
		diff = 0
	}
	for i := 0; i < diff; i++ {
		c.removeOldest()
	}
	c.size = size
	if diff > 0 && len(c.evictList.slots) > 2*(size+2) {
		c.compact()
	}
	return diff
}

// compact moves the live entries into a fresh, dense arena and rebuilds the
// index, so that shrinking the cache also releases the memory of the slots
// and map buckets it no longer needs.
func (c *LRU[K, V]) compact() {
	n := c.evictList.length()
	fresh := &lruList[K, V]{slots: make([]entry[K, V], 1, n+1)}
	items := make(map[K]int, n)
	for i := c.evictList.back(); i != 0; i = c.evictList.at(i).prev {
		ent := c.evictList.at(i)
		items[ent.key] = fresh.pushFront(ent.key, ent.value)
	}
	c.evictList, c.items = fresh, items
}

// removeOldest removes the oldest item from the cache.
func (c *LRU[K, V]) removeOldest() {
	if i := c.evictList.back(); i != 0 {
		c.removeElement(i)
	}
}

// removeElement is used to remove a given list slot from the cache
func (c *LRU[K, V]) removeElement(i int) (K, V) {
	key, value := c.evictList.remove(i)
	delete(c.items, key)
	if c.onEvict != nil {
		c.onEvict(key, value)
	}
	return key, value
}
