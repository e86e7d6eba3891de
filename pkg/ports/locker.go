package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a held session lock.
type UnlockFunc func(ctx context.Context) error

// SessionLocker coordinates wizard instances that share one config document.
// The wizard's commits are read-modify-write over the whole document, so two
// concurrent sessions on the same rig would silently interleave; holding a
// lock for the life of the session prevents that.
type SessionLocker interface {
	// Lock acquires the lock for key, blocking until it is acquired or ctx
	// ends. The TTL bounds how long a crashed holder can block others.
	// The returned UnlockFunc MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
