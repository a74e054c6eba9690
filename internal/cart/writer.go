package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/staybook/staybook-backend/pkg/logger"
)

// ErrWriterClosed is returned when a snapshot is enqueued after Close.
var ErrWriterClosed = errors.New("cart writer closed")

type writeRecorder interface {
	IncSnapshotWrite(result string)
}

// WriterOptions tunes retries and backlog reporting.
type WriterOptions struct {
	Retries     int
	Backoff     time.Duration
	BacklogWarn int
	Metrics     writeRecorder
}

// Writer persists cart snapshots on a single background worker. Writes to the
// same key coalesce to the latest payload and are applied in enqueue order.
type Writer struct {
	store   SnapshotStore
	logg    *logger.Logger
	metrics writeRecorder
	retries int
	backoff time.Duration
	warnAt  int

	mu     sync.Mutex
	keys   map[string]*keyState
	order  []string
	closed bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

type keyState struct {
	payload string
	queued  bool
	seq     uint64
	doneSeq uint64
	lastErr error
	waiters []flushWaiter
}

type flushWaiter struct {
	seq uint64
	ch  chan error
}

type writeJob struct {
	key     string
	payload string
	seq     uint64
}

// NewWriter starts the background worker.
func NewWriter(store SnapshotStore, logg *logger.Logger, opts WriterOptions) (*Writer, error) {
	if store == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	w := &Writer{
		store:   store,
		logg:    logg,
		metrics: opts.Metrics,
		retries: opts.Retries,
		backoff: opts.Backoff,
		warnAt:  opts.BacklogWarn,
		keys:    make(map[string]*keyState),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Enqueue schedules payload to be written under key. It never blocks on I/O.
func (w *Writer) Enqueue(key, payload string) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWriterClosed
	}
	st := w.state(key)
	st.payload = payload
	st.seq++
	if !st.queued {
		st.queued = true
		w.order = append(w.order, key)
	}
	backlog := len(w.order)
	w.mu.Unlock()

	if w.warnAt > 0 && backlog == w.warnAt {
		ctx := w.logg.WithField(context.Background(), "backlog", backlog)
		w.logg.Warn(ctx, "cart snapshot backlog reached warning threshold")
	}

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

// Flush waits until the latest payload enqueued for key has been written and
// returns the outcome of that write.
func (w *Writer) Flush(ctx context.Context, key string) error {
	w.mu.Lock()
	st, ok := w.keys[key]
	if !ok || st.doneSeq >= st.seq {
		var err error
		if ok {
			err = st.lastErr
		}
		w.mu.Unlock()
		return err
	}
	ch := make(chan error, 1)
	st.waiters = append(st.waiters, flushWaiter{seq: st.seq, ch: ch})
	w.mu.Unlock()

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports whether key has a payload that is queued, in flight, or whose
// last write failed.
func (w *Writer) Pending(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.keys[key]
	if !ok {
		return false
	}
	return st.queued || st.doneSeq < st.seq || st.lastErr != nil
}

// Close stops accepting writes and drains the queue.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.stop)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) state(key string) *keyState {
	st, ok := w.keys[key]
	if !ok {
		st = &keyState{}
		w.keys[key] = st
	}
	return st
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		if job, ok := w.next(); ok {
			w.process(job)
			continue
		}
		select {
		case <-w.wake:
		case <-w.stop:
			for {
				job, ok := w.next()
				if !ok {
					return
				}
				w.process(job)
			}
		}
	}
}

func (w *Writer) next() (writeJob, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.order) == 0 {
		return writeJob{}, false
	}
	key := w.order[0]
	w.order = w.order[1:]
	st := w.keys[key]
	st.queued = false
	return writeJob{key: key, payload: st.payload, seq: st.seq}, true
}

func (w *Writer) process(job writeJob) {
	err := w.write(job)

	w.mu.Lock()
	st := w.keys[job.key]
	st.doneSeq = job.seq
	st.lastErr = err
	remaining := st.waiters[:0]
	for _, waiter := range st.waiters {
		if waiter.seq <= job.seq {
			waiter.ch <- err
			continue
		}
		remaining = append(remaining, waiter)
	}
	st.waiters = remaining
	if !st.queued && len(st.waiters) == 0 && err == nil {
		delete(w.keys, job.key)
	}
	w.mu.Unlock()
}

func (w *Writer) write(job writeJob) error {
	ctx := w.logg.WithField(context.Background(), "cart_key", job.key)
	var err error
	for attempt := 0; attempt <= w.retries; attempt++ {
		if attempt > 0 && w.backoff > 0 {
			time.Sleep(w.backoff * time.Duration(attempt))
		}
		if err = w.store.Set(ctx, job.key, job.payload); err == nil {
			w.record("ok")
			return nil
		}
		w.logg.Warn(w.logg.WithField(ctx, "attempt", attempt+1), "cart snapshot write failed")
	}
	w.record("error")
	w.logg.Error(ctx, "cart snapshot write gave up", err)
	return err
}

func (w *Writer) record(result string) {
	if w.metrics != nil {
		w.metrics.IncSnapshotWrite(result)
	}
}
