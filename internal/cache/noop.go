package cache

import (
	"context"
	"time"
)

// NoOpCache is a cache implementation that does nothing. Used as a
// fallback when Redis is not configured - every lookup is a miss and every
// write succeeds silently.
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetAnswer(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (c *NoOpCache) SetAnswer(ctx context.Context, key string, answer string, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
