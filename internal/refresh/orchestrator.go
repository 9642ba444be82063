// Package refresh resynchronizes the local snapshot with the ledger service.
//
// Every refresh is a full resynchronization: the four read resources are
// fetched concurrently and installed together. Expenses and people are
// essential; if either fails the refresh fails and the current snapshot is
// kept. Balances and settlements are derived by the service and degrade to
// empty values when unavailable.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitsync/internal/metrics"
	"github.com/mmynk/splitsync/internal/models"
)

// Resource names used in errors, logs and metrics.
const (
	ResourceExpenses    = "expenses"
	ResourcePeople      = "people"
	ResourceBalances    = "balances"
	ResourceSettlements = "settlements"
)

// Fetcher reads the four ledger resources. *ledger.Client implements it.
type Fetcher interface {
	FetchExpenses(ctx context.Context) ([]models.Expense, error)
	FetchPeople(ctx context.Context) ([]models.Person, error)
	FetchBalances(ctx context.Context) (models.BalanceMap, error)
	FetchSettlements(ctx context.Context) ([]models.Settlement, error)
}

// Replacer installs a complete snapshot. *snapshot.Store implements it.
type Replacer interface {
	Replace(next models.Snapshot) models.Snapshot
}

// RefreshError reports a refresh aborted by an essential resource.
type RefreshError struct {
	Resource string
	Err      error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh %s: %v", e.Resource, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// Orchestrator runs full refreshes.
type Orchestrator struct {
	fetcher Fetcher
	store   Replacer
	metrics *metrics.Metrics
	now     func() time.Time

	// mu serializes refreshes so installs follow fetch order.
	mu sync.Mutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics records refresh and fetch metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithClock overrides the clock used for Snapshot.RefreshedAt.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator that reads from fetcher and writes to store.
func New(fetcher Fetcher, store Replacer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetcher: fetcher,
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type outcome[T any] struct {
	value T
	err   error
}

// start runs fetch in its own goroutine. The outcome may be read after wg.Wait.
func start[T any](ctx context.Context, wg *sync.WaitGroup, m *metrics.Metrics, resource string,
	fetch func(context.Context) (T, error)) *outcome[T] {
	out := &outcome[T]{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		began := time.Now()
		out.value, out.err = fetch(ctx)
		m.ObserveFetch(resource, time.Since(began), out.err)
	}()
	return out
}

// RefreshAll fetches all four resources concurrently and, unless an essential
// resource failed, installs them as one snapshot. On failure the store is
// left untouched and a *RefreshError is returned. Concurrent calls run one
// after another.
func (o *Orchestrator) RefreshAll(ctx context.Context) (models.Snapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	refreshID := uuid.NewString()
	slog.Debug("Refresh started", "refresh_id", refreshID)

	var wg sync.WaitGroup
	expenses := start(ctx, &wg, o.metrics, ResourceExpenses, o.fetcher.FetchExpenses)
	people := start(ctx, &wg, o.metrics, ResourcePeople, o.fetcher.FetchPeople)
	balances := start(ctx, &wg, o.metrics, ResourceBalances, o.fetcher.FetchBalances)
	settlements := start(ctx, &wg, o.metrics, ResourceSettlements, o.fetcher.FetchSettlements)
	wg.Wait()

	var essential *RefreshError
	if expenses.err != nil {
		essential = &RefreshError{Resource: ResourceExpenses, Err: expenses.err}
		slog.Error("Refresh failed", "refresh_id", refreshID, "resource", ResourceExpenses, "error", expenses.err)
	}
	if people.err != nil {
		if essential == nil {
			essential = &RefreshError{Resource: ResourcePeople, Err: people.err}
		}
		slog.Error("Refresh failed", "refresh_id", refreshID, "resource", ResourcePeople, "error", people.err)
	}
	if essential != nil {
		o.metrics.RefreshDone(metrics.OutcomeFailed)
		return models.Snapshot{}, essential
	}

	result := metrics.OutcomeOK
	if balances.err != nil {
		slog.Warn("Balances unavailable, using empty balances", "refresh_id", refreshID, "error", balances.err)
		balances.value = models.BalanceMap{}
		result = metrics.OutcomeDegraded
	}
	if settlements.err != nil {
		slog.Warn("Settlements unavailable, using empty plan", "refresh_id", refreshID, "error", settlements.err)
		settlements.value = []models.Settlement{}
		result = metrics.OutcomeDegraded
	}

	installed := o.store.Replace(models.Snapshot{
		Expenses:    expenses.value,
		People:      people.value,
		Balances:    balances.value,
		Settlements: settlements.value,
		RefreshedAt: o.now(),
	})

	o.metrics.RefreshDone(result)
	o.metrics.SetSnapshotItems(ResourceExpenses, len(installed.Expenses))
	o.metrics.SetSnapshotItems(ResourcePeople, len(installed.People))
	o.metrics.SetSnapshotItems(ResourceBalances, len(installed.Balances))
	o.metrics.SetSnapshotItems(ResourceSettlements, len(installed.Settlements))

	slog.Info("Refresh complete",
		"refresh_id", refreshID,
		"version", installed.Version,
		"outcome", result,
		"expenses_count", len(installed.Expenses),
		"people_count", len(installed.People),
		"settlements_count", len(installed.Settlements),
	)
	return installed, nil
}
