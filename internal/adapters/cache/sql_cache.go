package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/funneltechie/inboxreadybotclassifier/internal/core"
	"github.com/funneltechie/inboxreadybotclassifier/internal/detector"
	"go.uber.org/zap"
)

// sqlCache holds what the SQLite and MySQL caches share. Timestamps are
// stored as unix seconds so both dialects compare them the same way.
type sqlCache struct {
	db       *sql.DB
	logger   *zap.Logger
	upsert   string
	name     string
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newSQLCache(db *sql.DB, name, upsert string, logger *zap.Logger, cleanupFreq time.Duration) *sqlCache {
	c := &sqlCache{
		db:     db,
		logger: logger,
		upsert: upsert,
		name:   name,
		stopCh: make(chan struct{}),
	}
	if cleanupFreq > 0 {
		go runCleanup(cleanupFreq, c.stopCh, logger, c.Cleanup)
	}
	return c
}

// Get retrieves a cached entry
func (c *sqlCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	var (
		entry              core.CacheEntry
		category, reasons  string
		lastSeen, expireAt int64
	)

	err := c.db.QueryRowContext(ctx, `
		SELECT cache_key, email, score, category, reasons, last_seen, expires_at
		FROM classification_cache
		WHERE cache_key = ? AND expires_at > ?
	`, key, time.Now().Unix()).Scan(&entry.Key, &entry.Email, &entry.Score, &category, &reasons, &lastSeen, &expireAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry.Category = detector.Category(category)
	entry.LastSeen = time.Unix(lastSeen, 0)
	entry.ExpiresAt = time.Unix(expireAt, 0)
	if entry.Reasons, err = decodeReasons(reasons); err != nil {
		return nil, err
	}

	return &entry, nil
}

// Set stores a cache entry
func (c *sqlCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	reasons, err := encodeReasons(entry.Reasons)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, c.upsert,
		entry.Key,
		entry.Email,
		entry.Score,
		string(entry.Category),
		reasons,
		entry.LastSeen.Unix(),
		entry.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *sqlCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM classification_cache WHERE cache_key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx,
		`DELETE FROM classification_cache WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries",
			zap.String("backend", c.name),
			zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (c *sqlCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.String("backend", c.name), zap.Error(err))
		}
	})
}
