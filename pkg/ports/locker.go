package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockHeld is returned by a Locker when another holder owns the lock.
var ErrLockHeld = errors.New("lock held by another owner")

// UnlockFunc is a function that releases a lock.
type UnlockFunc func(ctx context.Context) error

// Locker defines the interface for cross-process concurrency control.
type Locker interface {
	// TryLock attempts to acquire the lock for the given key (a project name) without waiting.
	// It returns ErrLockHeld when the lock is owned elsewhere.
	// The returned UnlockFunc MUST be called to release the lock.
	TryLock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
