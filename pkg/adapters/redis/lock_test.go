package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/spherecal/pkg/adapters/redis"
)

func newLockerFixture(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLocker_LockAndRelease(t *testing.T) {
	mr, client := newLockerFixture(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "rig-config", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:rig-config"))

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("test:lock:rig-config"))
}

func TestLocker_ContendedLockWaitsUntilReleased(t *testing.T) {
	_, client := newLockerFixture(t)
	first := redis.NewLocker(client, "test:")
	second := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := first.Lock(ctx, "rig-config", 5*time.Second)
	require.NoError(t, err)

	// While the first session holds the lock, the second can only wait.
	waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = second.Lock(waitCtx, "rig-config", 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	unlock2, err := second.Lock(ctx, "rig-config", 5*time.Second)
	require.NoError(t, err)
	_ = unlock2(ctx)
}

func TestLocker_TryLockFailsFastWhenHeld(t *testing.T) {
	_, client := newLockerFixture(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.TryLock(ctx, "rig-config", 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = unlock(ctx) }()

	_, err = locker.TryLock(ctx, "rig-config", 5*time.Second)
	assert.ErrorIs(t, err, redis.ErrLockHeld)
}

func TestLocker_ExpiredHolderCannotReleaseSuccessor(t *testing.T) {
	mr, client := newLockerFixture(t)
	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	staleUnlock, err := locker.TryLock(ctx, "rig-config", 50*time.Millisecond)
	require.NoError(t, err)

	// Let the first session's TTL lapse and hand the lock to a successor.
	mr.FastForward(time.Second)
	_, err = locker.TryLock(ctx, "rig-config", 5*time.Second)
	require.NoError(t, err)

	// The stale release must not delete the successor's lock.
	require.NoError(t, staleUnlock(ctx))
	assert.True(t, mr.Exists("test:lock:rig-config"))
}
