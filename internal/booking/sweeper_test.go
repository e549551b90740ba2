package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wadhahbr/room-reservation/internal/repository"
)

// fakeExpiryStore records which reservations the sweeper asked to expire.
type fakeExpiryStore struct {
	mu      sync.Mutex
	rows    []repository.PendingRow
	listErr error
	failIDs map[uint64]bool
	expired []uint64
}

func (f *fakeExpiryStore) ListPending(context.Context) ([]repository.PendingRow, error) {
	return f.rows, f.listErr
}

func (f *fakeExpiryStore) Expire(_ context.Context, id uint64, _ time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[id] {
		return false, errors.New("deadlock")
	}
	f.expired = append(f.expired, id)
	return true, nil
}

func TestSweepExpiresOnlyStaleRows(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeExpiryStore{rows: []repository.PendingRow{
		{ID: 1, RoomID: 10, SlotStart: now.Add(-48 * time.Hour)}, // stale
		{ID: 2, RoomID: 11, SlotStart: now.Add(-1 * time.Hour)},  // within grace
		{ID: 3, RoomID: 12, SlotStart: now.Add(2 * time.Hour)},   // future
	}}
	s := NewSweeper(store, time.Hour, 24*time.Hour)

	if got := s.Sweep(context.Background()); got != 1 {
		t.Fatalf("Sweep() = %d, want 1", got)
	}
	if len(store.expired) != 1 || store.expired[0] != 1 {
		t.Fatalf("expired rows = %v, want [1]", store.expired)
	}
}

func TestSweepContinuesPastFailedRow(t *testing.T) {
	now := time.Now().UTC()
	store := &fakeExpiryStore{
		rows: []repository.PendingRow{
			{ID: 1, SlotStart: now.Add(-48 * time.Hour)},
			{ID: 2, SlotStart: now.Add(-48 * time.Hour)},
			{ID: 3, SlotStart: now.Add(-48 * time.Hour)},
		},
		failIDs: map[uint64]bool{2: true},
	}
	s := NewSweeper(store, time.Hour, 24*time.Hour)

	if got := s.Sweep(context.Background()); got != 2 {
		t.Fatalf("Sweep() = %d, want 2", got)
	}
}

func TestSweepListErrorIsNonFatal(t *testing.T) {
	store := &fakeExpiryStore{listErr: errors.New("db down")}
	s := NewSweeper(store, time.Hour, 24*time.Hour)
	if got := s.Sweep(context.Background()); got != 0 {
		t.Fatalf("Sweep() = %d, want 0", got)
	}
}

func TestSweepSingleFlight(t *testing.T) {
	store := &fakeExpiryStore{}
	s := NewSweeper(store, time.Hour, 24*time.Hour)

	// Simulate a pass already in flight.
	s.running.Store(true)
	if got := s.Sweep(context.Background()); got != 0 {
		t.Fatalf("concurrent Sweep() = %d, want 0", got)
	}
	s.running.Store(false)
	// The guard is released once the pass finishes.
	if got := s.Sweep(context.Background()); got != 0 {
		t.Fatalf("Sweep() after release = %d, want 0", got)
	}
	if !s.running.CompareAndSwap(false, true) {
		t.Fatal("guard left held after Sweep returned")
	}
}
