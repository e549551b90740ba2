package booking

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/wadhahbr/room-reservation/internal/repository"
)

// ExpiryStore is the slice of the ledger the sweeper needs: list the
// pending candidates, then expire each one under its own row lock.
type ExpiryStore interface {
	ListPending(ctx context.Context) ([]repository.PendingRow, error)
	Expire(ctx context.Context, id uint64, cutoff time.Time) (bool, error)
}

// Sweeper periodically cancels PENDING reservations that were never
// confirmed within the grace window after their slot started.  Each
// candidate is expired in its own transaction so one bad row never
// blocks the rest of the sweep.
type Sweeper struct {
	store    ExpiryStore
	interval time.Duration
	ttl      time.Duration
	running  atomic.Bool
}

// NewSweeper builds a sweeper that runs every interval and expires
// pending reservations whose slot started more than ttl ago.
func NewSweeper(store ExpiryStore, interval, ttl time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Sweeper{store: store, interval: interval, ttl: ttl}
}

// Run blocks until ctx is cancelled, sweeping once immediately and then
// on every tick.  Call it from its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one pass and reports how many reservations were
// expired.  A pass already in flight makes concurrent calls return 0
// immediately; the single-flight guard keeps a slow sweep from stacking
// up behind the ticker.
func (s *Sweeper) Sweep(ctx context.Context) int {
	if !s.running.CompareAndSwap(false, true) {
		return 0
	}
	defer s.running.Store(false)

	rows, err := s.store.ListPending(ctx)
	if err != nil {
		log.Printf("sweeper: list pending: %v", err)
		return 0
	}
	cutoff := time.Now().UTC().Add(-s.ttl)
	expired := 0
	for _, row := range rows {
		if !row.SlotStart.Before(cutoff) {
			continue
		}
		ok, err := s.store.Expire(ctx, row.ID, cutoff)
		if err != nil {
			log.Printf("sweeper: expire reservation %d: %v", row.ID, err)
			continue
		}
		if ok {
			expired++
		}
	}
	if expired > 0 {
		log.Printf("sweeper: expired %d stale pending reservation(s)", expired)
	}
	return expired
}
