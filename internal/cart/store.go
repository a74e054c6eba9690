package cart

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/staybook/staybook-backend/pkg/logger"
)

// ErrLineIDRequired is returned when a line without a room id is added.
var ErrLineIDRequired = errors.New("cart line id is required")

type snapshotQueue interface {
	Enqueue(key, payload string) error
	Flush(ctx context.Context, key string) error
	Pending(key string) bool
}

// Store is one guest's cart. Mutations are serialized and each one enqueues the
// full snapshot for persistence.
type Store struct {
	mu    sync.Mutex
	key   string
	lines []Line
	queue snapshotQueue
	logg  *logger.Logger
}

func newStore(key string, lines []Line, queue snapshotQueue, logg *logger.Logger) *Store {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{key: key, lines: lines, queue: queue, logg: logg}
}

// Key is the snapshot key this store persists under.
func (s *Store) Key() string {
	return s.key
}

// Add appends a new line with quantity one, or bumps the quantity of the line
// already holding that room. An existing line keeps its original dates.
func (s *Store) Add(line Line) error {
	line.ID = strings.TrimSpace(line.ID)
	if line.ID == "" {
		return ErrLineIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(line.ID); idx >= 0 {
		s.lines[idx].Quantity++
	} else {
		line = line.clone()
		line.Quantity = 1
		s.lines = append(s.lines, line)
	}
	s.persistLocked()
	return nil
}

// Remove drops the line for id. Absent ids are ignored.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

// UpdateQuantity sets the quantity for id, removing the line when q < 1.
func (s *Store) UpdateQuantity(id string, q int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q < 1 {
		s.removeLocked(id)
		return
	}
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.lines[idx].Quantity = q
	s.persistLocked()
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.persistLocked()
}

// Settle removes what a checkout booked. Each submitted line gives up the
// quantity it was submitted with, so rooms added or incremented while the
// bookings were in flight stay in the cart.
func (s *Store) Settle(submitted []Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for _, booked := range submitted {
		idx := s.indexOf(booked.ID)
		if idx < 0 {
			continue
		}
		changed = true
		remaining := s.lines[idx].Quantity - booked.Quantity
		if remaining < 1 {
			s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
			continue
		}
		s.lines[idx].Quantity = remaining
	}
	if changed {
		s.persistLocked()
	}
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	for i, line := range s.lines {
		out[i] = line.clone()
	}
	return out
}

// Len is the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// TotalItems is the sum of line quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, line := range s.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice is the sum of price times quantity. Stay totals are not used.
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.QuantityTotal())
	}
	return total
}

// StayTotal is the sum of LineTotal, preferring each line's precomputed stay total.
func (s *Store) StayTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// Flush waits for the latest snapshot of this cart to be written.
func (s *Store) Flush(ctx context.Context) error {
	return s.queue.Flush(ctx, s.key)
}

// reload replaces memory with what load returns, unless this store still has
// a snapshot waiting to be written or load fails.
func (s *Store) reload(load func() ([]Line, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Pending(s.key) {
		return
	}
	lines, err := load()
	if err != nil {
		return
	}
	s.lines = lines
}

func (s *Store) indexOf(id string) int {
	for i, line := range s.lines {
		if line.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(id string) {
	idx := s.indexOf(id)
	if idx < 0 {
		return
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	s.persistLocked()
}

// persistLocked enqueues the snapshot. Failures are logged and memory is kept.
func (s *Store) persistLocked() {
	payload, err := EncodeSnapshot(s.lines)
	if err == nil {
		err = s.queue.Enqueue(s.key, payload)
	}
	if err != nil {
		ctx := s.logg.WithField(context.Background(), "cart_key", s.key)
		s.logg.Error(ctx, "failed to enqueue cart snapshot", err)
	}
}
