package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/weaver/internal/logging"
	"github.com/aretw0/weaver/pkg/domain"
	"github.com/aretw0/weaver/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lease survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager guards project access, ensuring a single mutating operation per project.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker ports.Locker  // Optional cross-process locker
	ttl    time.Duration // Lease for the cross-process locker
	logger *slog.Logger  // Logger for internal events (like deferred errors)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables cross-process locking.
func WithLocker(locker ports.Locker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease requested from the cross-process locker.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:  make(map[string]*lockEntry),
		ttl:    DefaultLockTTL,
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST call release(name) once done with the entry.
func (m *Manager) acquire(name string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[name]
	if !exists {
		entry = &lockEntry{}
		m.locks[name] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[name]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, name)
	}
}

// WithLock executes fn while holding the lock for the project.
// If the lock is held in this process or by another one, fn is not called
// and a *domain.ConcurrentRunError is returned.
func (m *Manager) WithLock(ctx context.Context, name string, fn func(context.Context) error) error {
	entry := m.acquire(name)
	defer m.release(name)

	if !entry.mu.TryLock() {
		return &domain.ConcurrentRunError{Project: name}
	}
	defer entry.mu.Unlock()

	if m.locker != nil {
		unlock, err := m.locker.TryLock(ctx, name, m.ttl)
		if errors.Is(err, ports.ErrLockHeld) {
			return &domain.ConcurrentRunError{Project: name}
		}
		if err != nil {
			return fmt.Errorf("failed to acquire project lock: %w", err)
		}
		defer func() {
			// Release with a fresh context: ctx may already be cancelled.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release project lock",
					"project", name,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
