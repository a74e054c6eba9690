package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/staybook/staybook-backend/pkg/logger"
)

type memorySnapshots struct {
	mu      sync.Mutex
	data    map[string]string
	writes  []string
	getErr  error
	failN   int
	setErr  error
	blockCh chan struct{}
}

func newMemorySnapshots() *memorySnapshots {
	return &memorySnapshots{data: map[string]string{}}
}

func (m *memorySnapshots) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *memorySnapshots) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	block := m.blockCh
	m.mu.Unlock()
	if block != nil {
		<-block
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failN > 0 {
		m.failN--
		return errors.New("kv unavailable")
	}
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.writes = append(m.writes, value)
	return nil
}

func (m *memorySnapshots) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	return value, ok
}

func (m *memorySnapshots) writeLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}

func newTestWriter(t *testing.T, snapshots SnapshotStore, retries int) *Writer {
	t.Helper()
	w, err := NewWriter(snapshots, logger.Nop(), WriterOptions{Retries: retries, Backoff: time.Millisecond})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = w.Close(ctx)
	})
	return w
}

func newTestManager(t *testing.T, snapshots *memorySnapshots) *Manager {
	t.Helper()
	m, err := NewManager(snapshots, newTestWriter(t, snapshots, 0), func(userID string) string {
		return "sb:cart:" + userID
	}, logger.Nop())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func flushCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}
