package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/flowstep"
	"github.com/aretw0/flowstep/internal/logging"
	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/aretw0/flowstep/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a crashed replica can hold a session.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker     ports.DistributedLocker
	lockTTL    time.Duration
	engineOpts []flowstep.Option
	logger     *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEngineOptions are applied to every engine the Manager builds,
// typically hooks and a logger.
func WithEngineOptions(opts ...flowstep.Option) Option {
	return func(m *Manager) {
		m.engineOpts = append(m.engineOpts, opts...)
	}
}

// NewManager creates a new session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create validates the network, builds a bootstrap engine and persists it.
// An empty sessionID gets a random one.
func (m *Manager) Create(ctx context.Context, sessionID string, numberOfNodes int, edges []domain.EdgeSpec, opts ...flowstep.Option) (*domain.Session, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	eng, err := flowstep.New(numberOfNodes, edges, append(m.options(), opts...)...)
	if err != nil {
		return nil, err
	}

	sess := eng.Session(sessionID)
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, sess)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session %s: %w", sessionID, err)
	}
	m.logger.Info("session created", "session_id", sessionID, "nodes", numberOfNodes, "edges", len(edges))
	return sess, nil
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, sessionID)
		return err
	})
	return sess, err
}

// LoadOrCreate loads sessionID, or creates it from the given network when
// it does not exist yet.
func (m *Manager) LoadOrCreate(ctx context.Context, sessionID string, numberOfNodes int, edges []domain.EdgeSpec, opts ...flowstep.Option) (*domain.Session, error) {
	var sess *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		sess, err = m.store.Load(ctx, sessionID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		eng, err := flowstep.New(numberOfNodes, edges, append(m.options(), opts...)...)
		if err != nil {
			return err
		}
		sess = eng.Session(sessionID)
		if err := m.store.Save(ctx, sessionID, sess); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	return sess, err
}

// Apply runs fn against an engine rebuilt from the stored session and saves
// the result, all under the session lock. It returns the session as it was
// before and after fn.
func (m *Manager) Apply(ctx context.Context, sessionID string, fn func(context.Context, *flowstep.Engine) error) (before, after *domain.Session, err error) {
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		before, err = m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		eng, err := flowstep.NewFromSession(before, m.options()...)
		if err != nil {
			return err
		}
		if err := fn(ctx, eng); err != nil {
			return err
		}
		after = eng.Session(sessionID)
		return m.store.Save(ctx, sessionID, after)
	})
	if err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// Save persists the session.
func (m *Manager) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Save(ctx, sessionID, sess)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

func (m *Manager) options() []flowstep.Option {
	return append([]flowstep.Option(nil), m.engineOpts...)
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
