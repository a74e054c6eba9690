package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/staybook/staybook-backend/pkg/logger"
)

// DefaultIdleTTL is how long an untouched cart stays in memory.
const DefaultIdleTTL = 30 * time.Minute

type keyBuilder func(userID string) string

// ManagerOption tunes a Manager.
type ManagerOption func(*Manager)

// WithIdleTTL sets how long a cart with no pending writes may sit unused
// before it is dropped from memory. Non-positive values keep carts forever.
func WithIdleTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) { m.idleTTL = ttl }
}

func withClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// Manager owns every hydrated Store. It is built once at start-up and passed to
// the services that need carts.
//
// Each ForUser call re-reads the snapshot into a store that has nothing left to
// write, so changes persisted by another process are picked up before the next
// mutation. A store with queued or failed writes keeps its memory.
type Manager struct {
	snapshots SnapshotStore
	writer    *Writer
	keyFor    keyBuilder
	logg      *logger.Logger
	idleTTL   time.Duration
	now       func() time.Time

	mu        sync.Mutex
	stores    map[string]*managedStore
	lastSweep time.Time
}

type managedStore struct {
	store    *Store
	lastUsed time.Time
}

// NewManager wires the snapshot store and write queue.
func NewManager(snapshots SnapshotStore, writer *Writer, keyFor func(userID string) string, logg *logger.Logger, opts ...ManagerOption) (*Manager, error) {
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if writer == nil {
		return nil, fmt.Errorf("cart writer required")
	}
	if keyFor == nil {
		return nil, fmt.Errorf("cart key builder required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	m := &Manager{
		snapshots: snapshots,
		writer:    writer,
		keyFor:    keyFor,
		logg:      logg,
		idleTTL:   DefaultIdleTTL,
		now:       time.Now,
		stores:    make(map[string]*managedStore),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// ForUser returns the user's cart, refreshed from its snapshot when nothing is
// waiting to be written. Read or parse failures keep the cart as it is in
// memory (empty on first use) and are only logged.
func (m *Manager) ForUser(ctx context.Context, userID string) (*Store, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("user id required")
	}

	m.mu.Lock()
	now := m.now()
	m.evictIdleLocked(now)
	entry, ok := m.stores[userID]
	if !ok {
		entry = &managedStore{store: newStore(m.keyFor(userID), nil, m.writer, m.logg)}
		m.stores[userID] = entry
	}
	entry.lastUsed = now
	m.mu.Unlock()

	store := entry.store
	store.reload(func() ([]Line, error) { return m.load(ctx, store.Key()) })
	return store, nil
}

// Cached is the number of carts currently held in memory.
func (m *Manager) Cached() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}

func (m *Manager) evictIdleLocked(now time.Time) {
	if m.idleTTL <= 0 || now.Sub(m.lastSweep) < m.idleTTL {
		return
	}
	m.lastSweep = now
	for userID, entry := range m.stores {
		if now.Sub(entry.lastUsed) <= m.idleTTL || m.writer.Pending(entry.store.Key()) {
			continue
		}
		delete(m.stores, userID)
	}
}

func (m *Manager) load(ctx context.Context, key string) ([]Line, error) {
	ctx = m.logg.WithField(ctx, "cart_key", key)
	raw, ok, err := m.snapshots.Get(ctx, key)
	if err != nil {
		m.logg.Error(ctx, "failed to read cart snapshot", err)
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	lines, err := DecodeSnapshot(raw)
	if err != nil {
		m.logg.Error(ctx, "failed to parse cart snapshot", err)
		return nil, err
	}
	return lines, nil
}
