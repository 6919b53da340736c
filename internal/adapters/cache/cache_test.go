package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/funneltechie/inboxreadybotclassifier/internal/detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEntry(key string, ttl time.Duration) *core.CacheEntry {
	now := time.Now()
	return &core.CacheEntry{
		Key:       key,
		Email:     "noreply@example.com",
		Score:     55,
		Category:  detector.CategoryAutomated,
		Reasons:   []string{"Role-based email", "Moderate entropy for string length"},
		LastSeen:  now,
		ExpiresAt: now.Add(ttl),
	}
}

// exerciseRepository runs the behaviour every backend must share
func exerciseRepository(t *testing.T, repo core.CacheRepository) {
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	assert.Error(t, err)

	entry := newEntry("noreply@example.com||", time.Hour)
	require.NoError(t, repo.Set(ctx, entry))

	got, err := repo.Get(ctx, entry.Key)
	require.NoError(t, err)
	assert.Equal(t, entry.Email, got.Email)
	assert.Equal(t, entry.Score, got.Score)
	assert.Equal(t, entry.Category, got.Category)
	assert.Equal(t, entry.Reasons, got.Reasons)

	entry.Score = 60
	require.NoError(t, repo.Set(ctx, entry))
	got, err = repo.Get(ctx, entry.Key)
	require.NoError(t, err)
	assert.Equal(t, 60, got.Score)

	empty := newEntry("empty||", time.Hour)
	empty.Reasons = nil
	require.NoError(t, repo.Set(ctx, empty))
	got, err = repo.Get(ctx, empty.Key)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.Reasons)

	require.NoError(t, repo.Delete(ctx, entry.Key))
	_, err = repo.Get(ctx, entry.Key)
	assert.Error(t, err)

	expired := newEntry("expired||", -time.Minute)
	require.NoError(t, repo.Set(ctx, expired))
	_, err = repo.Get(ctx, expired.Key)
	assert.Error(t, err)

	require.NoError(t, repo.Cleanup(ctx))
	_, err = repo.Get(ctx, empty.Key)
	assert.NoError(t, err)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()

	exerciseRepository(t, c)
}

func TestMemoryCacheErrors(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	_, err := c.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.Set(ctx, newEntry("old", -time.Second)))
	_, err = c.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrExpired)

	assert.Equal(t, 1, c.Len())
	require.NoError(t, c.Cleanup(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheCopiesReasons(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(zap.NewNop(), 0)
	defer c.Stop()

	entry := newEntry("k", time.Hour)
	require.NoError(t, c.Set(ctx, entry))
	entry.Reasons[0] = "changed"

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "Role-based email", got.Reasons[0])

	got.Reasons[0] = "changed again"
	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "Role-based email", again.Reasons[0])
}

func TestMemoryCacheStopIsIdempotent(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Millisecond)
	c.Stop()
	assert.NotPanics(t, c.Stop)
}

func TestSQLiteCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	c, err := NewSQLiteCache(path, zap.NewNop(), 0)
	require.NoError(t, err)
	defer c.Stop()

	exerciseRepository(t, c)

	_, err = c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteCachePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := NewSQLiteCache(path, zap.NewNop(), 0)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, newEntry("kept", time.Hour)))
	c.Stop()

	reopened, err := NewSQLiteCache(path, zap.NewNop(), 0)
	require.NoError(t, err)
	defer reopened.Stop()

	got, err := reopened.Get(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, detector.CategoryAutomated, got.Category)
}

func TestMySQLCache(t *testing.T) {
	dsn := os.Getenv("BOT_CLASSIFIER_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("BOT_CLASSIFIER_TEST_MYSQL_DSN not set")
	}

	c, err := NewMySQLCache(dsn, zap.NewNop(), 0)
	require.NoError(t, err)
	defer c.Stop()

	exerciseRepository(t, c)
}
