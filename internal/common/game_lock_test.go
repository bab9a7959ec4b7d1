package common

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"infinite-experiment/werewolf/internal/logging"
)

func TestLocalGameLocker_SerializesSameKey(t *testing.T) {
	locker := NewLocalGameLocker()
	ctx := context.Background()

	var mu sync.Mutex
	inside, maxInside := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "1")
			require.NoError(t, err)
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
}

func TestLocalGameLocker_DifferentKeysDoNotBlock(t *testing.T) {
	locker := NewLocalGameLocker()
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "a")
	require.NoError(t, err)
	defer unlockA()

	unlockB, err := locker.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestLocalGameLocker_HonoursContext(t *testing.T) {
	locker := NewLocalGameLocker()

	unlock, err := locker.Lock(context.Background(), "1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocalGameLocker_UnlockIsIdempotent(t *testing.T) {
	locker := NewLocalGameLocker()
	unlock, err := locker.Lock(context.Background(), "1")
	require.NoError(t, err)
	unlock()
	unlock()

	unlock, err = locker.Lock(context.Background(), "1")
	require.NoError(t, err)
	unlock()
}

func TestRedisGameLocker_ReleaseFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	prev := logging.GetLogger()
	logging.SetLogger(zap.New(core).Sugar())
	t.Cleanup(func() { logging.SetLogger(prev) })

	// nothing listens on this port, so the release script cannot run
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	t.Cleanup(func() { _ = client.Close() })
	locker := NewRedisGameLocker(client, time.Minute)

	locker.release("LOCK_GAME_7", "token")

	entries := logs.FilterMessage("failed to release game lock").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "LOCK_GAME_7", entries[0].ContextMap()["key"])
	assert.NotEmpty(t, entries[0].ContextMap()["error"])
}
