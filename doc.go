// Package lru provides a thread-safe LRU cache and a read-through loading
// cache built on top of it.
//
// Cache wraps the non-thread-safe simplelru.LRU behind a single mutex. Every
// operation, Get included, is serialized: Get promotes the entry it returns,
// so there is no read-only fast path. Operations are atomic one call at a
// time; ContainsOrAdd, PeekOrAdd and Update cover the common check-then-act
// sequences under a single lock acquisition.
//
// A size of zero is valid and produces a cache that holds nothing: every
// Add is evicted straight away.
//
// LoadingCache fills misses through a user supplied loader, running at most
// one load per key at a time.
package lru
