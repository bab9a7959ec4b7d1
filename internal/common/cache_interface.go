package common

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// CacheInterface defines the contract for cache implementations.
// Values are stored as JSON so both backends hand back the same bytes.
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(ctx context.Context, key string, value []byte, duration time.Duration)

	// Get retrieves a value from cache by key
	Get(ctx context.Context, key string) ([]byte, bool)

	// Delete removes a value from cache by key
	Delete(ctx context.Context, key string)

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}

// GetOrSet retrieves a typed value from cache, or loads it using the loader function if not found
func GetOrSet[T any](ctx context.Context, c CacheInterface, key string, duration time.Duration, loader func() (T, error)) (T, error) {
	if raw, found := c.Get(ctx, key); found {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		c.Delete(ctx, key)
	}

	val, err := loader()
	if err != nil {
		var zero T
		return zero, err
	}

	data, err := json.Marshal(val)
	if err != nil {
		return val, fmt.Errorf("failed to marshal cache value for %s: %w", key, err)
	}
	c.Set(ctx, key, data, duration)
	return val, nil
}
