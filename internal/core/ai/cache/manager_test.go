package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"nutrition-resolver/internal/infrastructure/config"
	"nutrition-resolver/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func newTestManager(t *testing.T, maxSize int, ttl time.Duration) *CacheManager {
	t.Helper()
	cfg := &config.Config{}
	cfg.Cache.Enabled = true
	cfg.Cache.MaxSize = maxSize
	cfg.Cache.TTL = ttl
	cfg.Cache.CleanupInterval = time.Minute
	m := NewManager(cfg)
	require.NotNil(t, m)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestNewManager_Disabled(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cache.Enabled = false

	assert.Nil(t, NewManager(cfg))
}

func TestManager_SetGetRoundTrip(t *testing.T) {
	m := newTestManager(t, 10, time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "grilled chicken sandwich", `{"found":true}`))

	got, err := m.Get(ctx, "grilled chicken sandwich")
	require.NoError(t, err)
	assert.Equal(t, `{"found":true}`, got)
}

func TestManager_GetMiss(t *testing.T) {
	m := newTestManager(t, 10, time.Minute)

	got, err := m.Get(context.Background(), "never stored")
	assert.ErrorIs(t, err, common.ErrCacheDisabled)
	assert.Empty(t, got)
}

func TestManager_ExpiredEntryEvicted(t *testing.T) {
	m := newTestManager(t, 10, 10*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "short lived", "value"))
	time.Sleep(30 * time.Millisecond)

	_, err := m.Get(ctx, "short lived")
	assert.ErrorIs(t, err, common.ErrCacheDisabled)

	stats := m.GetStats()
	assert.EqualValues(t, 1, stats["evictions"])
	assert.Equal(t, 0, stats["size"])
}

func TestManager_LRUEviction(t *testing.T) {
	m := newTestManager(t, 2, time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "b", "2"))

	// 提升 a 的訪問次數，讓 b 成為淘汰對象
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "3"))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheDisabled)

	got, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	got, err = m.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "3", got)
}

func TestManager_SetZeroCapacity(t *testing.T) {
	m := newTestManager(t, 0, time.Minute)

	err := m.Set(context.Background(), "a", "1")
	assert.ErrorIs(t, err, common.ErrCacheFull)
}

func TestManager_GetStats(t *testing.T) {
	m := newTestManager(t, 10, time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "1"))
	_, _ = m.Get(ctx, "a")
	_, _ = m.Get(ctx, "missing")

	stats := m.GetStats()
	assert.Equal(t, 1, stats["size"])
	assert.Equal(t, 10, stats["max_size"])
	assert.EqualValues(t, 1, stats["hits"])
	assert.EqualValues(t, 1, stats["misses"])
	assert.InDelta(t, 0.5, stats["hit_ratio"], 1e-9)
}

func TestManager_CloseClearsStore(t *testing.T) {
	m := newTestManager(t, 10, time.Minute)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Close())

	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, common.ErrCacheDisabled)
}
