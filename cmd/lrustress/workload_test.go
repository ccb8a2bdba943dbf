package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lru "github.com/venkatsvpr/lrucache"
	"github.com/venkatsvpr/lrucache/internal/logger"
)

func quietLogger() *slog.Logger {
	return logger.New(logger.WithOutput(io.Discard))
}

func smallConfig() Config {
	return Config{
		Capacity:    64,
		Workers:     4,
		Ops:         5000,
		Keyspace:    256,
		ReadRatio:   0.6,
		RemoveRatio: 0.1,
		Seed:        7,
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

func TestRun(t *testing.T) {
	cfg := smallConfig()

	rep, err := Run(context.Background(), cfg, quietLogger())
	require.NoError(t, err)

	assert.EqualValues(t, cfg.Workers*cfg.Ops, rep.Ops)
	assert.Equal(t, rep.Ops, rep.Hits+rep.Misses+rep.Adds+rep.Removes)
	assert.Positive(t, rep.Evictions)
	assert.LessOrEqual(t, rep.Len, rep.Cap)
	assert.Equal(t, cfg.Capacity, rep.Cap)
	assert.Zero(t, rep.Resizes)
}

func TestRun_Resizing(t *testing.T) {
	cfg := smallConfig()
	cfg.ResizeEvery = 100

	rep, err := Run(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.EqualValues(t, (cfg.Ops-1)/cfg.ResizeEvery, rep.Resizes)
	assert.LessOrEqual(t, rep.Len, rep.Cap)
}

func TestRun_ZeroCapacity(t *testing.T) {
	cfg := smallConfig()
	cfg.Capacity = 0

	rep, err := Run(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Zero(t, rep.Hits)
	assert.Zero(t, rep.Len)
	assert.Equal(t, rep.Adds, rep.Evictions)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := Run(ctx, smallConfig(), quietLogger())
	require.NoError(t, err)
	assert.Zero(t, rep.Ops)
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Workers = 0

	_, err := Run(context.Background(), cfg, quietLogger())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestVerify(t *testing.T) {
	c, err := lru.New[int, int](4)
	require.NoError(t, err)
	c.Add(1, 1)
	c.Add(2, 2)
	require.NoError(t, verify(c))

	c.Add(3, 30)
	assert.ErrorIs(t, verify(c), ErrCorrupted)
}

func TestReportHitRatio(t *testing.T) {
	assert.Zero(t, Report{}.HitRatio())
	assert.InDelta(t, 0.25, Report{Hits: 1, Misses: 3}.HitRatio(), 1e-9)
}

func TestApp(t *testing.T) {
	cfg := smallConfig()
	app := newApp(&cfg)
	var out bytes.Buffer
	app.ErrWriter = &out

	err := app.RunContext(context.Background(), []string{
		"lrustress", "--capacity", "16", "--workers", "2", "--ops", "500", "--log-format", "json",
	})
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Capacity)
	assert.Equal(t, 2, cfg.Workers)
	assert.Contains(t, out.String(), `"msg":"stress run passed"`)
	assert.Contains(t, out.String(), `"cap":16`)
}

func TestApp_BadLogLevel(t *testing.T) {
	cfg := smallConfig()
	app := newApp(&cfg)
	app.ErrWriter = io.Discard

	err := app.RunContext(context.Background(), []string{"lrustress", "--log-level", "loud"})
	assert.Error(t, err)
}
