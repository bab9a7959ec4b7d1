package common

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"infinite-experiment/werewolf/internal/constants"
	"infinite-experiment/werewolf/internal/logging"
)

// GameLocker serializes mutating operations on one game.
// Callers must invoke the returned unlock exactly once.
type GameLocker interface {
	Lock(ctx context.Context, gameKey string) (unlock func(), err error)
}

// LocalGameLocker serializes within this process only.
type LocalGameLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

var _ GameLocker = (*LocalGameLocker)(nil)

func NewLocalGameLocker() *LocalGameLocker {
	return &LocalGameLocker{slots: make(map[string]chan struct{})}
}

func (l *LocalGameLocker) Lock(ctx context.Context, gameKey string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[gameKey]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[gameKey] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// unlockScript deletes the lock only if it still holds our token
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGameLocker serializes across every server instance sharing the Redis.
type RedisGameLocker struct {
	client    *redis.Client
	ttl       time.Duration
	retryWait time.Duration
}

var _ GameLocker = (*RedisGameLocker)(nil)

func NewRedisGameLocker(client *redis.Client, ttl time.Duration) *RedisGameLocker {
	return &RedisGameLocker{client: client, ttl: ttl, retryWait: 50 * time.Millisecond}
}

var ErrLockTimeout = errors.New("timed out waiting for game lock")

func (l *RedisGameLocker) Lock(ctx context.Context, gameKey string) (func(), error) {
	key := string(constants.CachePrefixGameLock) + gameKey
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryWait)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			var once sync.Once
			return func() { once.Do(func() { l.release(key, token) }) }, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

// release drops the lock if token still owns it. A failed or late release is only
// logged: the TTL frees the key eventually.
func (l *RedisGameLocker) release(key, token string) {
	// fresh context so a cancelled request still unlocks
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	deleted, err := unlockScript.Run(ctx, l.client, []string{key}, token).Int()
	if err != nil {
		logging.Warn("failed to release game lock", "key", key, "ttl", l.ttl.String(), "error", err)
		return
	}
	if deleted == 0 {
		logging.Warn("game lock expired before release", "key", key, "ttl", l.ttl.String())
	}
}
