package cache

import (
	"context"
	"sync"
	"time"

	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"go.uber.org/zap"
)

// MemoryCache is an in-memory implementation of the CacheRepository interface
type MemoryCache struct {
	entries  map[string]core.CacheEntry
	mu       sync.RWMutex
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewMemoryCache creates a new in-memory cache. Expired entries are swept
// every cleanupFreq; a non-positive frequency disables the sweep.
func NewMemoryCache(logger *zap.Logger, cleanupFreq time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]core.CacheEntry),
		logger:  logger,
		stopCh:  make(chan struct{}),
	}

	if cleanupFreq > 0 {
		go runCleanup(cleanupFreq, c.stopCh, logger, c.Cleanup)
	}

	return c
}

// Get retrieves a cached entry
func (c *MemoryCache) Get(_ context.Context, key string) (*core.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil, ErrExpired
	}

	entry.Reasons = append([]string{}, entry.Reasons...)
	return &entry, nil
}

// Set stores a cache entry
func (c *MemoryCache) Set(_ context.Context, entry *core.CacheEntry) error {
	stored := *entry
	stored.Reasons = append([]string{}, entry.Reasons...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Key] = stored
	return nil
}

// Delete removes a cache entry
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			expiredCount++
		}
	}

	c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", expiredCount))
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stop stops the background cleanup task
func (c *MemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}
