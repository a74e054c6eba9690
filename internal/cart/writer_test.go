package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/staybook/staybook-backend/pkg/logger"
)

type countingRecorder struct {
	results map[string]int
}

func (c *countingRecorder) IncSnapshotWrite(result string) {
	c.results[result]++
}

func TestWriterPersistsAndFlushes(t *testing.T) {
	snapshots := newMemorySnapshots()
	w := newTestWriter(t, snapshots, 0)

	if err := w.Enqueue("k1", "[1]"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := w.Flush(flushCtx(t), "k1"); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got, ok := snapshots.value("k1"); !ok || got != "[1]" {
		t.Fatalf("expected persisted payload, got %q", got)
	}
}

func TestWriterCoalescesPendingWrites(t *testing.T) {
	snapshots := newMemorySnapshots()
	snapshots.blockCh = make(chan struct{})
	w := newTestWriter(t, snapshots, 0)

	if err := w.Enqueue("k1", "v1"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	// Let the worker pick v1 and park inside Set.
	time.Sleep(20 * time.Millisecond)
	for _, payload := range []string{"v2", "v3", "v4"} {
		if err := w.Enqueue("k1", payload); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	close(snapshots.blockCh)

	if err := w.Flush(flushCtx(t), "k1"); err != nil {
		t.Fatalf("flush: %v", err)
	}
	writes := snapshots.writeLog()
	if len(writes) != 2 || writes[0] != "v1" || writes[1] != "v4" {
		t.Fatalf("expected [v1 v4], got %v", writes)
	}
}

func TestWriterRetriesTransientFailures(t *testing.T) {
	snapshots := newMemorySnapshots()
	snapshots.failN = 2
	recorder := &countingRecorder{results: map[string]int{}}
	w, err := NewWriter(snapshots, logger.Nop(), WriterOptions{Retries: 3, Backoff: time.Millisecond, Metrics: recorder})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	defer func() { _ = w.Close(context.Background()) }()

	if err := w.Enqueue("k1", "payload"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := w.Flush(flushCtx(t), "k1"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if got, _ := snapshots.value("k1"); got != "payload" {
		t.Fatalf("expected payload persisted, got %q", got)
	}
	if recorder.results["ok"] != 1 || recorder.results["error"] != 0 {
		t.Fatalf("unexpected metrics: %v", recorder.results)
	}
}

func TestWriterSurfacesFinalFailureOnFlush(t *testing.T) {
	snapshots := newMemorySnapshots()
	snapshots.setErr = errors.New("read only replica")
	w := newTestWriter(t, snapshots, 1)

	if err := w.Enqueue("k1", "payload"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := w.Flush(flushCtx(t), "k1"); err == nil {
		t.Fatal("expected flush to report the failed write")
	}
}

func TestWriterFlushUnknownKey(t *testing.T) {
	w := newTestWriter(t, newMemorySnapshots(), 0)
	if err := w.Flush(flushCtx(t), "nobody"); err != nil {
		t.Fatalf("expected nil for untouched key, got %v", err)
	}
}

func TestWriterCloseDrainsAndRejects(t *testing.T) {
	snapshots := newMemorySnapshots()
	w, err := NewWriter(snapshots, logger.Nop(), WriterOptions{})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	for _, key := range []string{"a", "b", "c"} {
		if err := w.Enqueue(key, key); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	if err := w.Close(flushCtx(t)); err != nil {
		t.Fatalf("close: %v", err)
	}
	for _, key := range []string{"a", "b", "c"} {
		if got, ok := snapshots.value(key); !ok || got != key {
			t.Fatalf("expected %s drained, got %q", key, got)
		}
	}
	if err := w.Enqueue("d", "d"); !errors.Is(err, ErrWriterClosed) {
		t.Fatalf("expected ErrWriterClosed, got %v", err)
	}
}

func TestNewWriterRequiresStore(t *testing.T) {
	if _, err := NewWriter(nil, logger.Nop(), WriterOptions{}); err == nil {
		t.Fatal("expected error without store")
	}
}

func TestWriterPendingTracksUnwrittenPayloads(t *testing.T) {
	snapshots := newMemorySnapshots()
	snapshots.blockCh = make(chan struct{})
	w := newTestWriter(t, snapshots, 0)

	if w.Pending("k1") {
		t.Fatal("unknown key must not be pending")
	}
	if err := w.Enqueue("k1", "payload"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if !w.Pending("k1") {
		t.Fatal("expected queued payload to be pending")
	}

	close(snapshots.blockCh)
	if err := w.Flush(flushCtx(t), "k1"); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if w.Pending("k1") {
		t.Fatal("written payload must not be pending")
	}
}

func TestWriterPendingAfterFailedWrite(t *testing.T) {
	snapshots := newMemorySnapshots()
	snapshots.setErr = errors.New("read only replica")
	w := newTestWriter(t, snapshots, 0)

	_ = w.Enqueue("k1", "payload")
	_ = w.Flush(flushCtx(t), "k1")
	if !w.Pending("k1") {
		t.Fatal("a failed write must keep the key pending")
	}
}
