package lru

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	// ErrNilLoader is returned when a LoadingCache is built without a loader.
	ErrNilLoader = errors.New("must provide a loader")

	// ErrLoaderPanicked is wrapped by the error returned to callers that
	// were waiting on a loader which panicked.
	ErrLoaderPanicked = errors.New("loader panicked")

	errLoaderExited = errors.New("loader called runtime.Goexit")
)

// panicError carries a recovered loader panic and the stack it was raised on.
type panicError struct {
	value any
	stack []byte
}

func newPanicError(v any) *panicError {
	return &panicError{value: v, stack: debug.Stack()}
}

func (p *panicError) Error() string {
	return fmt.Sprintf("%v: %v\n\n%s", ErrLoaderPanicked, p.value, p.stack)
}

func (p *panicError) Unwrap() error {
	return ErrLoaderPanicked
}

// LoaderFunc produces the value for a key that is not cached.
type LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// LoadingCache is a thread-safe LRU cache that fills misses through a
// loader. Concurrent misses on the same key share one loader call.
type LoadingCache[K comparable, V any] struct {
	cache *Cache[K, V]
	load  LoaderFunc[K, V]

	mu       sync.Mutex
	inflight map[K]*loadCall[V]
}

// loadCall is a load in progress; done is closed once value and err are set.
// abandoned marks a load that failed because the leader's context ended.
type loadCall[V any] struct {
	done      chan struct{}
	value     V
	err       error
	abandoned bool
}

// NewLoading creates a loading cache of the given size.
func NewLoading[K comparable, V any](size int, load LoaderFunc[K, V]) (*LoadingCache[K, V], error) {
	if load == nil {
		return nil, ErrNilLoader
	}
	cache, err := New[K, V](size)
	if err != nil {
		return nil, err
	}
	return &LoadingCache[K, V]{
		cache:    cache,
		load:     load,
		inflight: make(map[K]*loadCall[V]),
	}, nil
}

// Cache returns the underlying cache, for removals, resizing and inspection.
func (c *LoadingCache[K, V]) Cache() *Cache[K, V] {
	return c.cache
}

// Get returns the cached value for key, loading it on a miss. Callers that
// find a load for the same key already running wait for its result, or for
// ctx to be done. Load errors are returned to every waiter and not cached.
// A load abandoned because its caller's ctx ended is retried by the waiters
// whose own ctx is still live. If the loader panics, the panic is raised
// again in the caller that ran it and waiters get an error wrapping
// ErrLoaderPanicked.
func (c *LoadingCache[K, V]) Get(ctx context.Context, key K) (V, error) {
	for {
		if value, ok := c.cache.Get(key); ok {
			return value, nil
		}

		call, leader := c.join(key)
		if leader {
			c.run(ctx, key, call)
			return call.value, call.err
		}

		select {
		case <-call.done:
			if call.abandoned && ctx.Err() == nil {
				continue
			}
			return call.value, call.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}
}

// join returns the in-flight call for key, registering a new one when there
// is none. leader reports whether the caller must run the load.
func (c *LoadingCache[K, V]) join(key K) (call *loadCall[V], leader bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if call, ok := c.inflight[key]; ok {
		return call, false
	}
	call = &loadCall[V]{done: make(chan struct{})}
	c.inflight[key] = call
	return call, true
}

func (c *LoadingCache[K, V]) run(ctx context.Context, key K, call *loadCall[V]) {
	returned := false
	defer func() {
		var perr *panicError
		if !returned {
			if r := recover(); r != nil {
				perr = newPanicError(r)
				call.err = perr
			} else {
				call.err = errLoaderExited
			}
		}
		call.abandoned = returned && call.err != nil && ctx.Err() != nil

		c.mu.Lock()
		delete(c.inflight, key)
		c.mu.Unlock()
		close(call.done)

		if perr != nil {
			panic(perr)
		}
	}()

	call.value, call.err = c.load(ctx, key)
	returned = true
	if call.err == nil {
		c.cache.Add(key, call.value)
	}
}
