// Package commands implements the mutation commands: recording an expense
// and registering a participant.
//
// Each command validates its input locally, resolves defaults from the
// current snapshot, submits one write to the ledger service and then runs a
// full refresh. Commands are serialized: a second command waits until the
// first one and its trailing refresh have finished.
package commands

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsync/internal/ledger"
	"github.com/mmynk/splitsync/internal/metrics"
	"github.com/mmynk/splitsync/internal/models"
)

// DefaultTitle replaces an empty draft title.
const DefaultTitle = "New Expense"

const (
	commandAddExpense = "add_expense"
	commandAddPerson  = "add_person"
)

// Writer submits mutations to the ledger service. *ledger.Client implements it.
type Writer interface {
	CreateExpense(ctx context.Context, req ledger.ExpenseRequest) error
	CreatePerson(ctx context.Context, name string) error
}

// Refresher resynchronizes the snapshot. *refresh.Orchestrator implements it.
type Refresher interface {
	RefreshAll(ctx context.Context) (models.Snapshot, error)
}

// SnapshotSource returns the current snapshot. *snapshot.Store implements it.
type SnapshotSource interface {
	Snapshot() models.Snapshot
}

// Result is the outcome of a command that did not fail.
type Result struct {
	// Skipped is true when the command was a no-op (e.g., empty person name).
	Skipped bool

	// Snapshot is the snapshot after the command: the refreshed one when
	// Refreshed is true, otherwise the current (stale) one.
	Snapshot models.Snapshot

	// Refreshed reports whether the trailing refresh succeeded.
	Refreshed bool

	// RefreshErr is the trailing refresh error. The write itself succeeded.
	RefreshErr error
}

// Commands owns the draft expense and runs mutation commands.
type Commands struct {
	writer    Writer
	refresher Refresher
	snapshots SnapshotSource
	metrics   *metrics.Metrics

	// run serializes commands together with their trailing refresh.
	run sync.Mutex

	mu    sync.Mutex
	draft models.DraftExpense
}

// Option configures Commands.
type Option func(*Commands)

// WithMetrics records command outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Commands) { c.metrics = m }
}

// New creates Commands with an empty draft.
func New(writer Writer, refresher Refresher, snapshots SnapshotSource, opts ...Option) *Commands {
	c := &Commands{
		writer:    writer,
		refresher: refresher,
		snapshots: snapshots,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddExpense validates the current draft, submits it and refreshes.
//
// Validation failures return a *ValidationError without any network call.
// Write failures return the ledger error. In both cases the draft is kept
// so the user can correct it. On success the draft is reset, unless it was
// edited while the write was in flight.
func (c *Commands) AddExpense(ctx context.Context) (Result, error) {
	c.run.Lock()
	defer c.run.Unlock()

	draft := c.Draft()
	req, err := BuildExpenseRequest(draft, c.snapshots.Snapshot())
	if err != nil {
		slog.Info("AddExpense rejected locally", "error", err)
		c.metrics.MutationDone(commandAddExpense, metrics.OutcomeInvalid)
		return Result{}, err
	}

	slog.Info("AddExpense submitting",
		"title", req.Title,
		"amount", req.Amount.String(),
		"paid_by_id", req.PaidByID,
		"participant_ids", req.ParticipantIDs,
	)
	if err := c.writer.CreateExpense(ctx, req); err != nil {
		slog.Warn("AddExpense failed", "error", err)
		c.metrics.MutationDone(commandAddExpense, writeOutcome(err))
		return Result{}, err
	}

	if !c.resetDraftIfUnchanged(draft) {
		slog.Info("Draft edited during submit, keeping edits")
	}
	c.metrics.MutationDone(commandAddExpense, metrics.OutcomeOK)
	return c.refresh(ctx), nil
}

// AddPerson registers name and refreshes. An empty name is a silent no-op.
//
// The name is submitted as given; only a blank name is skipped.
func (c *Commands) AddPerson(ctx context.Context, name string) (Result, error) {
	if strings.TrimSpace(name) == "" {
		return Result{Skipped: true, Snapshot: c.snapshots.Snapshot()}, nil
	}

	c.run.Lock()
	defer c.run.Unlock()

	slog.Info("AddPerson submitting", "name", name)
	if err := c.writer.CreatePerson(ctx, name); err != nil {
		slog.Warn("AddPerson failed", "name", name, "error", err)
		c.metrics.MutationDone(commandAddPerson, writeOutcome(err))
		return Result{}, err
	}

	c.metrics.MutationDone(commandAddPerson, metrics.OutcomeOK)
	return c.refresh(ctx), nil
}

// refresh runs the trailing refresh. Its failure does not fail the command.
func (c *Commands) refresh(ctx context.Context) Result {
	snap, err := c.refresher.RefreshAll(ctx)
	if err != nil {
		slog.Warn("Refresh after mutation failed, keeping previous snapshot", "error", err)
		return Result{Snapshot: c.snapshots.Snapshot(), RefreshErr: err}
	}
	return Result{Snapshot: snap, Refreshed: true}
}

// BuildExpenseRequest validates draft and resolves its defaults against snap:
// an empty title becomes DefaultTitle, a missing payer becomes the first
// person, and an empty participant list becomes every person.
func BuildExpenseRequest(draft models.DraftExpense, snap models.Snapshot) (ledger.ExpenseRequest, error) {
	amount, err := parseAmount(draft.Amount)
	if err != nil {
		return ledger.ExpenseRequest{}, err
	}

	title := draft.Title
	if title == "" {
		title = DefaultTitle
	}

	var payer int64
	if draft.PaidByID != nil {
		payer = *draft.PaidByID
	} else {
		first, ok := snap.FirstPerson()
		if !ok {
			return ledger.ExpenseRequest{}, ErrNoPayer
		}
		payer = first.ID
	}
	if payer <= 0 {
		return ledger.ExpenseRequest{}, ErrNoPayer
	}

	participants := draft.Participants
	if strings.TrimSpace(participants) == "" {
		participants = joinIDs(snap.PersonIDs())
	}

	return ledger.ExpenseRequest{
		Title:          title,
		Amount:         amount,
		PaidByID:       payer,
		ParticipantIDs: participants,
	}, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil || amount.IsNegative() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return amount, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func writeOutcome(err error) string {
	if errors.Is(err, ledger.ErrRejected) {
		return metrics.OutcomeRejected
	}
	return metrics.OutcomeError
}
