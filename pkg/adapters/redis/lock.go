package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/spherecal/pkg/ports"
)

// ErrLockHeld is returned when the session lock is held by another wizard
// and the caller asked not to wait.
var ErrLockHeld = errors.New("calibration session already in progress")

// unlockScript deletes the lock only if we still own it, so a session that
// outlived its TTL cannot release a successor's lock.
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// Locker implements ports.SessionLocker using Redis SET NX PX. It guards a
// config document against concurrent wizard sessions.
type Locker struct {
	client *backend.Client
	prefix string
}

// NewLocker creates a locker over an existing client. The prefix namespaces
// lock keys away from the documents they guard.
func NewLocker(client *backend.Client, prefix string) *Locker {
	if prefix == "" {
		prefix = "spherecal:"
	}
	return &Locker{client: client, prefix: prefix}
}

// Lock acquires the session lock for key, retrying until ctx ends. The first
// attempt is immediate so the uncontended path does not wait out a poll
// interval.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := fmt.Sprintf("%d", time.Now().UnixNano())

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		acquired, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring session lock: %w", err)
		}
		if acquired {
			return func(ctx context.Context) error {
				return l.client.Eval(ctx, unlockScript, []string{lockKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// TryLock is the non-blocking variant: it fails with ErrLockHeld instead of
// waiting for the current session to end.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := fmt.Sprintf("%d", time.Now().UnixNano())

	acquired, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring session lock: %w", err)
	}
	if !acquired {
		return nil, ErrLockHeld
	}
	return func(ctx context.Context) error {
		return l.client.Eval(ctx, unlockScript, []string{lockKey}, token).Err()
	}, nil
}
