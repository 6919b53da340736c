package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a cache entry is not found
	ErrNotFound = errors.New("cache entry not found")
	// ErrExpired is returned when a cache entry has expired
	ErrExpired = errors.New("cache entry expired")
)

func encodeReasons(reasons []string) (string, error) {
	if reasons == nil {
		reasons = []string{}
	}
	b, err := json.Marshal(reasons)
	if err != nil {
		return "", fmt.Errorf("failed to encode reasons: %w", err)
	}
	return string(b), nil
}

func decodeReasons(raw string) ([]string, error) {
	reasons := []string{}
	if raw == "" {
		return reasons, nil
	}
	if err := json.Unmarshal([]byte(raw), &reasons); err != nil {
		return nil, fmt.Errorf("failed to decode reasons: %w", err)
	}
	return reasons, nil
}

// runCleanup calls cleanup every freq until stopCh is closed
func runCleanup(freq time.Duration, stopCh <-chan struct{}, logger *zap.Logger, cleanup func(context.Context) error) {
	ticker := time.NewTicker(freq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := cleanup(context.Background()); err != nil {
				logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-stopCh:
			return
		}
	}
}
