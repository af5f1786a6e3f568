//go:build !unix

package file

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/weaver/pkg/ports"
)

// tryLockFile falls back to exclusive creation where flock is unavailable.
// A lock file left by a crashed process must be removed by hand.
func tryLockFile(path string) (ports.UnlockFunc, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ports.ErrLockHeld
		}
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}
	return func(ctx context.Context) error {
		return errors.Join(f.Close(), os.Remove(path))
	}, nil
}
