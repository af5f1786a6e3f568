package file_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/weaver/internal/adapters/file"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_Contention(t *testing.T) {
	dir := t.TempDir()
	first := file.NewLocker(dir)
	second := file.NewLocker(dir)
	ctx := context.Background()

	unlock, err := first.TryLock(ctx, "shared", time.Minute)
	require.NoError(t, err)

	_, err = second.TryLock(ctx, "shared", time.Minute)
	assert.ErrorIs(t, err, ports.ErrLockHeld)

	_, err = second.TryLock(ctx, "other", time.Minute)
	require.NoError(t, err, "locks are per project")

	require.NoError(t, unlock(ctx))

	unlock2, err := second.TryLock(ctx, "shared", time.Minute)
	require.NoError(t, err)
	assert.NoError(t, unlock2(ctx))
}

func TestLocker_RejectsEscapingKey(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "state")

	_, err := file.NewLocker(base).TryLock(context.Background(), "../escaped", time.Minute)
	var nameErr *domain.InvalidNameError
	require.ErrorAs(t, err, &nameErr)
	assert.NoDirExists(t, filepath.Join(root, "escaped"))
}
