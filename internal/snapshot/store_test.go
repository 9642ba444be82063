package snapshot

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitsync/internal/models"
)

func TestNewStoreIsEmpty(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()

	assert.Equal(t, models.EmptySnapshot(), snap)
	assert.False(t, snap.Refreshed())
}

func TestReplaceSwapsWholeSnapshot(t *testing.T) {
	s := NewStore()

	first := s.Replace(models.Snapshot{
		People:   []models.Person{{ID: 1, Name: "A"}},
		Balances: models.BalanceMap{"A": decimal.NewFromInt(5)},
	})
	assert.Equal(t, uint64(1), first.Version)
	assert.NotNil(t, first.Expenses, "nil resources are normalized to empty")
	assert.NotNil(t, first.Settlements)

	second := s.Replace(models.Snapshot{
		Expenses: []models.Expense{{ID: 9, Amount: decimal.NewFromInt(3)}},
	})
	assert.Equal(t, uint64(2), second.Version)

	got := s.Snapshot()
	assert.Equal(t, second, got)
	assert.Empty(t, got.People, "previous resources must not leak into the replacement")
	assert.Empty(t, got.Balances)
}

func TestSubscribeReceivesReplacements(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	defer cancel()

	s.Replace(models.Snapshot{People: []models.Person{{ID: 1, Name: "A"}}})

	select {
	case snap := <-ch:
		assert.Equal(t, uint64(1), snap.Version)
		require.Len(t, snap.People, 1)
	case <-time.After(time.Second):
		t.Fatal("subscriber was not notified")
	}
}

func TestSubscribeLatestWins(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	defer cancel()

	for i := 0; i < 5; i++ {
		s.Replace(models.Snapshot{})
	}

	snap := <-ch
	assert.Equal(t, uint64(5), snap.Version)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra snapshot version %d", extra.Version)
	default:
	}
}

func TestCancelClosesChannel(t *testing.T) {
	s := NewStore()
	ch, cancel := s.Subscribe()
	cancel()
	cancel() // idempotent

	_, ok := <-ch
	assert.False(t, ok)

	assert.NotPanics(t, func() { s.Replace(models.Snapshot{}) })
}

func TestConcurrentReadersNeverTear(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := s.Snapshot()
				// every writer below installs len(People) == len(Expenses) == Version
				if snap.Version > 0 {
					assert.Equal(t, int(snap.Version), len(snap.People))
					assert.Equal(t, len(snap.People), len(snap.Expenses))
				}
			}
		}()
	}

	for i := 1; i <= 50; i++ {
		people := make([]models.Person, i)
		expenses := make([]models.Expense, i)
		s.Replace(models.Snapshot{People: people, Expenses: expenses})
	}
	close(stop)
	wg.Wait()
}
