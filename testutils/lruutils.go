// Package testutils holds conformance checks shared by every cache that
// implements simplelru.LRUCache.
package testutils

import (
	"testing"

	"github.com/venkatsvpr/lrucache/simplelru"
)

func BasicTest(t *testing.T, l simplelru.LRUCache[int, int], capacity int, evictCounter *int) {
	t.Helper()

	// add twice as much the capacity to check if eviction occurs
	for i := 0; i < 2*capacity; i++ {
		l.Add(i, i)
	}

	if l.Len() != capacity {
		t.Fatalf("bad len: %v", l.Len())
	}

	// half of them should be evicted to make room for the incoming ones
	if *evictCounter != capacity {
		t.Fatalf("bad evict count: %v", *evictCounter)
	}

	// cache should contain only the keys from capacity..2*capacity, anything before
	// that should have been evicted
	for i, k := range l.Keys() {
		if v, ok := l.Get(k); !ok || v != k || v != i+capacity {
			t.Fatalf("bad key: %v", k)
		}
	}

	for i := 0; i < capacity; i++ {
		if _, ok := l.Get(i); ok {
			t.Fatalf("should be evicted")
		}
	}

	for i := capacity; i < 2*capacity; i++ {
		if _, ok := l.Get(i); !ok {
			t.Fatalf("should not be evicted")
		}
	}

	// delete half the items from cache
	lastIndex := capacity + capacity/2
	for i := capacity; i < lastIndex; i++ {
		if ok := l.Remove(i); !ok {
			t.Fatalf("should be contained")
		}
		if ok := l.Remove(i); ok {
			t.Fatalf("should not be contained")
		}
		if _, ok := l.Get(i); ok {
			t.Fatalf("should be deleted")
		}
	}

	// this makes this item the most recently accessed; moved to the front
	l.Get(lastIndex)

	cacheLen := l.Len()
	if capacity/2 != cacheLen {
		t.Fatalf("invalid len. expected %v, got %v", capacity/2, cacheLen)
	}

	// Keys - returns items from oldest to newest.
	for i, k := range l.Keys() {
		if (i == cacheLen-1 && k != lastIndex) || (i < cacheLen-1 && k != i+lastIndex+1) {
			t.Fatalf("out of order key: %v %v %v", i, k, cacheLen-1)
		}
	}

	l.Purge()
	if l.Len() != 0 || !l.Empty() {
		t.Fatalf("bad len: %v", l.Len())
	}
	if l.Cap() != capacity {
		t.Fatalf("purge changed capacity: %v", l.Cap())
	}

	if _, ok := l.Get(2 * capacity); ok {
		t.Fatalf("should contain nothing")
	}
}

func GetOldestRemoveOldestTest(t *testing.T, l simplelru.LRUCache[int, int], capacity int) {
	t.Helper()

	if _, _, ok := l.GetOldest(); ok {
		t.Fatalf("empty cache should have no oldest entry")
	}
	if _, _, ok := l.RemoveOldest(); ok {
		t.Fatalf("empty cache should have nothing to remove")
	}

	for i := 0; i < 2*capacity; i++ {
		l.Add(i, i)
	}

	k, _, ok := l.GetOldest()
	if !ok {
		t.Fatalf("missing")
	}
	if k != capacity {
		t.Fatalf("bad: %v", k)
	}

	k, _, ok = l.RemoveOldest()
	if !ok {
		t.Fatalf("missing")
	}
	if k != capacity {
		t.Fatalf("bad: %v", k)
	}

	k, _, ok = l.RemoveOldest()
	if !ok {
		t.Fatalf("missing")
	}
	if k != capacity+1 {
		t.Fatalf("bad: %v", k)
	}
}

func AddTest(t *testing.T, l simplelru.LRUCache[int, int], capacity int, evictCounter *int) {
	t.Helper()

	for i := 0; i < capacity; i++ {
		if l.Add(i, i) || *evictCounter != 0 {
			t.Errorf("should not have an eviction")
		}
	}
	if !l.Add(capacity, capacity) || *evictCounter != 1 {
		t.Errorf("should have an eviction")
	}
}

func ContainsTest(t *testing.T, l simplelru.LRUCache[int, int], capacity int) {
	t.Helper()

	for i := 0; i < capacity; i++ {
		l.Add(i, i)
	}

	// contains should not update the recent-ness so this item will remain the oldest
	if !l.Contains(0) {
		t.Errorf("0 should be contained")
	}

	// oldest (0) should have been evicted
	l.Add(capacity, capacity)
	if l.Contains(0) {
		t.Errorf("Contains should not have updated recent-ness of 0")
	}
}

func PeekTest(t *testing.T, l simplelru.LRUCache[int, int], capacity int) {
	t.Helper()

	for i := 0; i < capacity; i++ {
		l.Add(i, i)
	}

	if v, ok := l.Peek(0); !ok || v != 0 {
		t.Errorf("0 should be set to 0: %v, %v", v, ok)
	}

	l.Add(capacity, capacity)
	if l.Contains(0) {
		t.Errorf("should have been removed to make room for the new item")
	}
}

// PromotionTest fills the cache, reads the oldest key and checks that the
// next insert evicts the second oldest instead.
func PromotionTest(t *testing.T, l simplelru.LRUCache[int, int], capacity int) {
	t.Helper()

	for i := 0; i < capacity; i++ {
		l.Add(i, i)
	}
	if v, ok := l.Get(0); !ok || v != 0 {
		t.Fatalf("0 should be present: %v, %v", v, ok)
	}

	l.Add(capacity, capacity)
	if !l.Contains(0) {
		t.Fatalf("0 was read last and should have survived")
	}
	if capacity > 1 && l.Contains(1) {
		t.Fatalf("1 was least recently used and should have been evicted")
	}
	if l.Len() != capacity {
		t.Fatalf("bad len: %v", l.Len())
	}
}

// UpdateTest checks that re-adding a key replaces its value in place.
func UpdateTest(t *testing.T, l simplelru.LRUCache[int, int]) {
	t.Helper()

	l.Add(1, 1)
	l.Add(2, 2)
	if l.Add(1, 10) {
		t.Fatalf("updating a key should not evict")
	}
	if l.Len() != 2 {
		t.Fatalf("bad len: %v", l.Len())
	}
	if v, ok := l.Get(1); !ok || v != 10 {
		t.Fatalf("bad value for 1: %v, %v", v, ok)
	}
	if k, _, _ := l.GetOldest(); k != 2 {
		t.Fatalf("2 should be the oldest after 1 was updated, got %v", k)
	}
}

// ZeroCapacityTest checks that a zero sized cache never holds anything.
func ZeroCapacityTest(t *testing.T, l simplelru.LRUCache[int, int]) {
	t.Helper()

	for i := 0; i < 16; i++ {
		if !l.Add(i, i) {
			t.Fatalf("add to zero sized cache should report an eviction")
		}
		if !l.Empty() || l.Len() != 0 {
			t.Fatalf("zero sized cache should stay empty, len %v", l.Len())
		}
		if _, ok := l.Get(i); ok {
			t.Fatalf("zero sized cache should not return %v", i)
		}
	}
}

// ResizeTest shrinks a full cache to half and checks that exactly the most
// recently used half survives.
func ResizeTest(t *testing.T, l simplelru.LRUCache[int, int], capacity int) {
	t.Helper()

	for i := 0; i < capacity; i++ {
		l.Add(i, i)
	}

	half := capacity / 2
	if evicted := l.Resize(half); evicted != capacity-half {
		t.Fatalf("bad evicted count: %v", evicted)
	}
	if l.Len() != half || l.Cap() != half {
		t.Fatalf("bad len/cap: %v/%v", l.Len(), l.Cap())
	}
	for i := 0; i < capacity-half; i++ {
		if l.Contains(i) {
			t.Fatalf("%v should have been evicted", i)
		}
	}
	for i := capacity - half; i < capacity; i++ {
		if !l.Contains(i) {
			t.Fatalf("%v should have been kept", i)
		}
	}

	if evicted := l.Resize(capacity); evicted != 0 {
		t.Fatalf("growing should not evict: %v", evicted)
	}
	for i := capacity; i < capacity+half; i++ {
		if l.Add(i, i) {
			t.Fatalf("grown cache should admit %v without eviction", i)
		}
	}
	if l.Len() != capacity {
		t.Fatalf("bad len: %v", l.Len())
	}
}
