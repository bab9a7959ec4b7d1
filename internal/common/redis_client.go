package common

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"infinite-experiment/werewolf/internal/logging"
)

// NewRedisClient connects to Redis and pings it once.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	logging.Info("initializing redis client", "addr", addr, "db", db)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logging.Info("connected to redis", "addr", addr)
	return client, nil
}
