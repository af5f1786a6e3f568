package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/weaver/internal/adapters/redis"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:", nil)
	ctx := context.Background()

	unlock, err := locker.TryLock(ctx, "resource1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	assert.True(t, mr.Exists("test:lock:resource1"), "Lock key should be set in Redis")
	assert.Greater(t, mr.TTL("test:lock:resource1"), time.Duration(0))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:resource1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	_, client := newClient(t)
	locker1 := redis.NewLocker(client, "test:", nil)
	locker2 := redis.NewLocker(client, "test:", nil)
	ctx := context.Background()

	unlock1, err := locker1.TryLock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)

	_, err = locker2.TryLock(ctx, "shared", 5*time.Second)
	assert.ErrorIs(t, err, ports.ErrLockHeld)

	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.TryLock(ctx, "shared", 5*time.Second)
	require.NoError(t, err)
	assert.NoError(t, unlock2(ctx))
}

func TestRedisLocker_UnlockDoesNotStealForeignLock(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "test:", nil)
	ctx := context.Background()

	unlock, err := locker.TryLock(ctx, "job", time.Second)
	require.NoError(t, err)

	// Simulate expiry and takeover by another owner.
	mr.Del("test:lock:job")
	require.NoError(t, mr.Set("test:lock:job", "someone-else"))

	require.NoError(t, unlock(ctx))
	got, err := mr.Get("test:lock:job")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
