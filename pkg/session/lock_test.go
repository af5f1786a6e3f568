package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager()
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		name := fmt.Sprintf("project-%d", i)
		_ = mgr.WithLock(ctx, name, func(context.Context) error { return nil })
	}

	assert.Empty(t, mgr.locks, "lock entries must be released once unused")
}
