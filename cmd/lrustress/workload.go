package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	lru "github.com/venkatsvpr/lrucache"
)

// ErrCorrupted is returned when the cache breaks one of its invariants.
var ErrCorrupted = errors.New("cache corrupted")

// Report summarises a finished run.
type Report struct {
	Ops       int64
	Hits      int64
	Misses    int64
	Adds      int64
	Removes   int64
	Evictions int64
	Resizes   int64
	Len       int
	Cap       int
	Elapsed   time.Duration
}

// HitRatio is hits over lookups, 0 when nothing was looked up.
func (r Report) HitRatio() float64 {
	if lookups := r.Hits + r.Misses; lookups > 0 {
		return float64(r.Hits) / float64(lookups)
	}
	return 0
}

// LogValue implements slog.LogValuer.
func (r Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("ops", r.Ops),
		slog.Int64("hits", r.Hits),
		slog.Int64("misses", r.Misses),
		slog.Int64("adds", r.Adds),
		slog.Int64("removes", r.Removes),
		slog.Int64("evictions", r.Evictions),
		slog.Int64("resizes", r.Resizes),
		slog.Int("len", r.Len),
		slog.Int("cap", r.Cap),
		slog.Duration("elapsed", r.Elapsed),
		slog.Float64("hit_ratio", r.HitRatio()),
	)
}

type counters struct {
	ops, hits, misses, adds, removes, evictions, resizes atomic.Int64
}

// Run drives cfg.Workers goroutines against one cache and verifies the
// cache once they are done. A cancelled ctx stops the workers early; the
// partial run is still verified.
func Run(ctx context.Context, cfg Config, log *slog.Logger) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}

	var cnt counters
	cache, err := lru.NewWithEvict(cfg.Capacity, func(k, v int) {
		cnt.evictions.Add(1)
	})
	if err != nil {
		return Report{}, fmt.Errorf("create cache: %w", err)
	}

	log.Info("starting stress run",
		slog.Int("capacity", cfg.Capacity),
		slog.Int("workers", cfg.Workers),
		slog.Int("ops_per_worker", cfg.Ops),
		slog.Int("keyspace", cfg.Keyspace),
	)

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			return work(ctx, w, cfg, cache, &cnt, log)
		})
	}
	werr := g.Wait()

	rep := Report{
		Ops:       cnt.ops.Load(),
		Hits:      cnt.hits.Load(),
		Misses:    cnt.misses.Load(),
		Adds:      cnt.adds.Load(),
		Removes:   cnt.removes.Load(),
		Evictions: cnt.evictions.Load(),
		Resizes:   cnt.resizes.Load(),
		Len:       cache.Len(),
		Cap:       cache.Cap(),
		Elapsed:   time.Since(start),
	}

	if err := verify(cache); err != nil {
		return rep, err
	}
	if werr != nil && !errors.Is(werr, context.Canceled) {
		return rep, werr
	}
	return rep, nil
}

func work(ctx context.Context, id int, cfg Config, cache *lru.Cache[int, int], cnt *counters, log *slog.Logger) error {
	r := rand.New(rand.NewPCG(cfg.Seed, uint64(id)))
	log = log.With(slog.Int("worker", id))
	log.Debug("worker started")

	for i := 0; i < cfg.Ops; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				log.Debug("worker stopped", slog.Int("done", i))
				return err
			}
		}

		if id == 0 && cfg.ResizeEvery > 0 && i > 0 && i%cfg.ResizeEvery == 0 {
			size := cfg.Capacity
			if cache.Cap() == cfg.Capacity {
				size = cfg.Capacity / 2
			}
			n := cache.Resize(size)
			cnt.resizes.Add(1)
			log.Debug("resized", slog.Int("cap", size), slog.Int("evicted", n))
		}

		k := r.IntN(cfg.Keyspace)
		switch p := r.Float64(); {
		case p < cfg.ReadRatio:
			v, ok := cache.Get(k)
			if !ok {
				cnt.misses.Add(1)
				break
			}
			if v != k {
				return fmt.Errorf("%w: key %d holds %d", ErrCorrupted, k, v)
			}
			cnt.hits.Add(1)
		case p < cfg.ReadRatio+cfg.RemoveRatio:
			cache.Remove(k)
			cnt.removes.Add(1)
		default:
			cache.Add(k, k)
			cnt.adds.Add(1)
		}
		cnt.ops.Add(1)
	}

	log.Debug("worker finished")
	return nil
}

// verify checks that the recency list, the index and the size agree.
func verify(cache *lru.Cache[int, int]) error {
	n, capacity := cache.Len(), cache.Cap()
	if n > capacity {
		return fmt.Errorf("%w: len %d exceeds cap %d", ErrCorrupted, n, capacity)
	}

	keys := cache.Keys()
	if len(keys) != n {
		return fmt.Errorf("%w: %d keys listed, len %d", ErrCorrupted, len(keys), n)
	}

	seen := make(map[int]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: key %d listed twice", ErrCorrupted, k)
		}
		seen[k] = struct{}{}

		v, ok := cache.Peek(k)
		if !ok {
			return fmt.Errorf("%w: key %d listed but not indexed", ErrCorrupted, k)
		}
		if v != k {
			return fmt.Errorf("%w: key %d holds %d", ErrCorrupted, k, v)
		}
	}
	return nil
}
