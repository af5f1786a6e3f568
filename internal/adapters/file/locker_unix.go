//go:build unix

package file

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/weaver/pkg/ports"
	"golang.org/x/sys/unix"
)

func tryLockFile(path string) (ports.UnlockFunc, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ports.ErrLockHeld
		}
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	return func(ctx context.Context) error {
		uerr := unix.Flock(int(f.Fd()), unix.LOCK_UN)
		cerr := f.Close()
		return errors.Join(uerr, cerr)
	}, nil
}
