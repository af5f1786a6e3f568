package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/weaver/internal/logging"
	"github.com/aretw0/weaver/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// Only the owner may release or extend a lock.
var (
	unlockScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`)

	refreshScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end`)
)

// DefaultLockTTL applies when TryLock is called without a TTL.
const DefaultLockTTL = 30 * time.Second

// Locker implements ports.Locker using Redis SET NX PX.
// While held, the lock TTL is extended in the background so long runs keep it.
type Locker struct {
	client *backend.Client
	prefix string
	logger *slog.Logger
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string, logger *slog.Logger) *Locker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Locker{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (l *Locker) lockKey(key string) string {
	return l.prefix + "lock:" + key
}

// TryLock acquires the lock once and returns ports.ErrLockHeld if another owner has it.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	lockKey := l.lockKey(key)
	val := uuid.NewString()

	ok, err := l.client.SetNX(ctx, lockKey, val, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error acquiring lock: %w", err)
	}
	if !ok {
		return nil, ports.ErrLockHeld
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.refresh(lockKey, val, ttl, stop, done)

	return func(ctx context.Context) error {
		close(stop)
		<-done
		return unlockScript.Run(ctx, l.client, []string{lockKey}, val).Err()
	}, nil
}

func (l *Locker) refresh(lockKey, val string, ttl time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), ttl/3)
			n, err := refreshScript.Run(ctx, l.client, []string{lockKey}, val, ttl.Milliseconds()).Int()
			cancel()
			if err != nil {
				l.logger.Warn("Failed to refresh distributed lock", "key", lockKey, "err", err)
				continue
			}
			if n == 0 {
				l.logger.Warn("Distributed lock lost", "key", lockKey)
				return
			}
		}
	}
}
