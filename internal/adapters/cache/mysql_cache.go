package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	*sqlCache
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS classification_cache (
			cache_key VARCHAR(767) PRIMARY KEY,
			email VARCHAR(320) NOT NULL,
			score INT NOT NULL,
			category VARCHAR(32) NOT NULL,
			reasons TEXT NOT NULL,
			last_seen BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	upsert := `
		INSERT INTO classification_cache
			(cache_key, email, score, category, reasons, last_seen, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			email = VALUES(email),
			score = VALUES(score),
			category = VALUES(category),
			reasons = VALUES(reasons),
			last_seen = VALUES(last_seen),
			expires_at = VALUES(expires_at)
	`
	return &MySQLCache{newSQLCache(db, "mysql", upsert, logger, cleanupFreq)}, nil
}
