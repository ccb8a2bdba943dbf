// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package simplelru

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"
)

func TestLRU(t *testing.T) {
	evictCounter := 0
	onEvicted := func(k int, v int) {
		if k != v {
			t.Fatalf("Evict values not equal (%v!=%v)", k, v)
		}
		evictCounter++
	}
	l, err := NewLRU(128, onEvicted)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	for i := 0; i < 256; i++ {
		l.Add(i, i)
	}
	if l.Len() != 128 {
		t.Fatalf("bad len: %v", l.Len())
	}
	if evictCounter != 128 {
		t.Fatalf("bad evict count: %v", evictCounter)
	}

	for i, k := range l.Keys() {
		if v, ok := l.Get(k); !ok || v != k || v != i+128 {
			t.Fatalf("bad key: %v", k)
		}
	}
	for i, v := range l.Values() {
		if v != i+128 {
			t.Fatalf("bad value: %v", v)
		}
	}
	for i := 128; i < 192; i++ {
		if ok := l.Remove(i); !ok {
			t.Fatalf("should be contained")
		}
		if ok := l.Remove(i); ok {
			t.Fatalf("should not be contained")
		}
	}

	l.Get(192) // expect 192 to be last key in l.Keys()

	for i, k := range l.Keys() {
		if (i < 63 && k != i+193) || (i == 63 && k != 192) {
			t.Fatalf("out of order key: %v", k)
		}
	}

	l.Purge()
	if l.Len() != 0 {
		t.Fatalf("bad len: %v", l.Len())
	}
	if evictCounter != 256 {
		t.Fatalf("remove and purge should report every entry: %v", evictCounter)
	}
	if _, ok := l.Get(200); ok {
		t.Fatalf("should contain nothing")
	}
}

func TestLRU_NegativeSize(t *testing.T) {
	if _, err := NewLRU[int, int](-1, nil); !errors.Is(err, ErrNegativeSize) {
		t.Fatalf("expected ErrNegativeSize, got %v", err)
	}
}

// Test that Get on a missing key leaves ordering alone and returns the zero value
func TestLRU_GetMissing(t *testing.T) {
	l, err := NewLRU[string, int](2, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	l.Add("a", 1)
	l.Add("b", 2)
	if v, ok := l.Get("c"); ok || v != 0 {
		t.Fatalf("missing key returned %v, %v", v, ok)
	}
	l.wantKeys(t, []string{"a", "b"})
}

// Test that Resize can upsize and downsize
func TestLRU_Resize(t *testing.T) {
	onEvictCounter := 0
	onEvicted := func(k int, v int) {
		onEvictCounter++
	}
	l, err := NewLRU(2, onEvicted)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	// Downsize
	l.Add(1, 1)
	l.Add(2, 2)
	evicted := l.Resize(1)
	if evicted != 1 {
		t.Errorf("1 element should have been evicted: %v", evicted)
	}
	if onEvictCounter != 1 {
		t.Errorf("onEvicted should have been called 1 time: %v", onEvictCounter)
	}

	l.Add(3, 3)
	if l.Contains(1) {
		t.Errorf("Element 1 should have been evicted")
	}

	// Upsize
	evicted = l.Resize(2)
	if evicted != 0 {
		t.Errorf("0 elements should have been evicted: %v", evicted)
	}

	l.Add(4, 4)
	if !l.Contains(3) || !l.Contains(4) {
		t.Errorf("Cache should have contained 2 elements")
	}

	// Down to nothing
	if evicted = l.Resize(-5); evicted != 2 {
		t.Errorf("2 elements should have been evicted: %v", evicted)
	}
	if l.Cap() != 0 || !l.Empty() {
		t.Errorf("negative resize should leave an empty zero sized cache")
	}
}

func TestLRU_ZeroCapacityEvictsInserted(t *testing.T) {
	var evicted []int
	l, err := NewLRU(0, func(k int, _ int) {
		evicted = append(evicted, k)
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	l.Add(1, 1)
	l.Add(2, 2)
	if !reflect.DeepEqual(evicted, []int{1, 2}) {
		t.Fatalf("evicted got: %v", evicted)
	}
	if !l.Empty() {
		t.Fatalf("bad len: %v", l.Len())
	}
}

// Test that freed slots are reused instead of growing the arena
func TestLRU_SlotReuse(t *testing.T) {
	l, err := NewLRU[int, *int](4, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	for i := 0; i < 1000; i++ {
		v := i
		l.Add(i, &v)
	}
	// sentinel, capacity slots and the one in flight before an eviction
	if n := len(l.evictList.slots); n != 6 {
		t.Fatalf("arena should hold capacity+2 slots, got %v", n)
	}

	l.Remove(999)
	l.Remove(998)
	if n := len(l.evictList.free); n != 3 {
		t.Fatalf("expected 3 free slots, got %v", n)
	}
	for _, i := range l.evictList.free {
		if l.evictList.slots[i].value != nil {
			t.Fatalf("freed slot %v still references its value", i)
		}
	}

	l.Add(1000, nil)
	if n := len(l.evictList.free); n != 2 {
		t.Fatalf("expected 2 free slots, got %v", n)
	}
	if n := len(l.evictList.slots); n != 6 {
		t.Fatalf("arena grew on reuse: %v", n)
	}
}

// Test that shrinking far below the arena size compacts it and keeps order
func TestLRU_ResizeCompacts(t *testing.T) {
	l, err := NewLRU[int, int](1000, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	for i := 0; i < 1000; i++ {
		l.Add(i, i)
	}
	l.Get(500)

	if evicted := l.Resize(10); evicted != 990 {
		t.Fatalf("bad evicted count: %v", evicted)
	}
	if n := len(l.evictList.slots); n != 11 {
		t.Fatalf("arena should have been compacted to 11 slots, got %v", n)
	}
	if n := len(l.evictList.free); n != 0 {
		t.Fatalf("compacted arena should have no free slots, got %v", n)
	}
	l.wantKeys(t, []int{991, 992, 993, 994, 995, 996, 997, 998, 999, 500})
	for _, k := range l.Keys() {
		if v, ok := l.Peek(k); !ok || v != k {
			t.Fatalf("index lost %v after compaction", k)
		}
	}

	l.Add(1000, 1000)
	l.wantKeys(t, []int{992, 993, 994, 995, 996, 997, 998, 999, 500, 1000})
}

func (c *LRU[K, V]) wantKeys(t *testing.T, want []K) {
	t.Helper()
	got := c.Keys()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("wrong keys got: %v, want: %v ", got, want)
	}
}

func TestCache_EvictionSameKey(t *testing.T) {
	var evictedKeys []int

	cache, _ := NewLRU(
		2,
		func(key int, _ struct{}) {
			evictedKeys = append(evictedKeys, key)
		})

	if evicted := cache.Add(1, struct{}{}); evicted {
		t.Error("First 1: got unexpected eviction")
	}
	cache.wantKeys(t, []int{1})

	if evicted := cache.Add(2, struct{}{}); evicted {
		t.Error("2: got unexpected eviction")
	}
	cache.wantKeys(t, []int{1, 2})

	if evicted := cache.Add(1, struct{}{}); evicted {
		t.Error("Second 1: got unexpected eviction")
	}
	cache.wantKeys(t, []int{2, 1})

	if evicted := cache.Add(3, struct{}{}); !evicted {
		t.Error("3: did not get expected eviction")
	}
	cache.wantKeys(t, []int{1, 3})

	want := []int{2}
	if !reflect.DeepEqual(evictedKeys, want) {
		t.Errorf("evictedKeys got: %v want: %v", evictedKeys, want)
	}
}

// Test that size and ordering stay consistent after every operation
func TestLRU_RandomOpsKeepBounds(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	l, err := NewLRU[int, int](16, nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	for op := 0; op < 20000; op++ {
		k := r.IntN(64)
		switch n := r.IntN(100); {
		case n < 40:
			l.Add(k, k)
		case n < 65:
			if v, ok := l.Get(k); ok && v != k {
				t.Fatalf("op %d: get %v returned %v", op, k, v)
			}
		case n < 75:
			l.Contains(k)
		case n < 85:
			l.Remove(k)
		case n < 90:
			l.RemoveOldest()
		case n < 98:
			l.Resize(r.IntN(33))
		default:
			l.Purge()
		}

		if l.Len() > l.Cap() {
			t.Fatalf("op %d: len %v exceeds cap %v", op, l.Len(), l.Cap())
		}
		keys := l.Keys()
		if len(keys) != l.Len() {
			t.Fatalf("op %d: %v keys for len %v", op, len(keys), l.Len())
		}
		if l.Empty() != (l.Len() == 0) {
			t.Fatalf("op %d: empty disagrees with len %v", op, l.Len())
		}
		seen := make(map[int]bool, len(keys))
		for _, key := range keys {
			if seen[key] {
				t.Fatalf("op %d: duplicate key %v", op, key)
			}
			seen[key] = true
			if v, ok := l.Peek(key); !ok || v != key {
				t.Fatalf("op %d: key %v peeks to %v, %v", op, key, v, ok)
			}
		}
	}
}
