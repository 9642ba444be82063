// Package snapshot holds the controller's last-known-consistent view of the ledger.
package snapshot

import (
	"sync"

	"github.com/mmynk/splitsync/internal/models"
)

// Store holds one Snapshot. The only mutation is Replace, which swaps the
// whole value; readers never observe a partially updated snapshot.
type Store struct {
	mu      sync.RWMutex
	current models.Snapshot
	subs    map[int]chan models.Snapshot
	nextSub int
}

// NewStore returns a Store holding the empty snapshot.
func NewStore() *Store {
	return &Store{
		current: models.EmptySnapshot(),
		subs:    make(map[int]chan models.Snapshot),
	}
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace installs next as the current snapshot, assigns it the next version
// and notifies subscribers. It returns the installed snapshot.
func (s *Store) Replace(next models.Snapshot) models.Snapshot {
	normalize(&next)

	s.mu.Lock()
	defer s.mu.Unlock()

	next.Version = s.current.Version + 1
	s.current = next
	for _, ch := range s.subs {
		offer(ch, next)
	}
	return next
}

// Subscribe returns a channel that receives every snapshot installed after
// the call. Slow subscribers only see the latest snapshot. The returned
// func cancels the subscription and closes the channel.
func (s *Store) Subscribe() (<-chan models.Snapshot, func()) {
	ch := make(chan models.Snapshot, 1)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// offer delivers snap to ch, replacing any undelivered older snapshot.
// Callers hold the write lock, so there is a single sender per channel.
func offer(ch chan models.Snapshot, snap models.Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}

func normalize(s *models.Snapshot) {
	if s.Expenses == nil {
		s.Expenses = []models.Expense{}
	}
	if s.People == nil {
		s.People = []models.Person{}
	}
	if s.Balances == nil {
		s.Balances = models.BalanceMap{}
	}
	if s.Settlements == nil {
		s.Settlements = []models.Settlement{}
	}
}
