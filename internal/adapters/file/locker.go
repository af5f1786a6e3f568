package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
)

// Locker implements ports.Locker with an advisory lock on <base>/<name>/.lock.
// The lock is released by the OS if the holding process dies, so the TTL is ignored.
type Locker struct {
	BasePath string
}

// NewLocker creates a Locker rooted at the same base path as the Store.
func NewLocker(basePath string) *Locker {
	if basePath == "" {
		basePath = "."
	}
	return &Locker{BasePath: basePath}
}

// TryLock acquires the project lock or fails immediately with ports.ErrLockHeld.
func (l *Locker) TryLock(ctx context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	if err := domain.ValidateName(key); err != nil {
		return nil, err
	}
	dir := filepath.Join(l.BasePath, key)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure project directory: %w", err)
	}
	return tryLockFile(filepath.Join(dir, lockFile))
}
