package commands

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitsync/internal/ledger"
	"github.com/mmynk/splitsync/internal/models"
	"github.com/mmynk/splitsync/internal/snapshot"
)

// fakeWriter records submitted writes.
type fakeWriter struct {
	mu       sync.Mutex
	expenses []ledger.ExpenseRequest
	people   []string
	err      error

	// block, when set, holds every write until it is closed.
	block    chan struct{}
	inFlight atomic.Int32
	maxSeen  atomic.Int32

	// onWrite, when set, runs inside every write before it is recorded.
	onWrite func()
}

func (w *fakeWriter) enter() {
	n := w.inFlight.Add(1)
	for {
		seen := w.maxSeen.Load()
		if n <= seen || w.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	if w.block != nil {
		<-w.block
	}
	if w.onWrite != nil {
		w.onWrite()
	}
}

func (w *fakeWriter) CreateExpense(ctx context.Context, req ledger.ExpenseRequest) error {
	w.enter()
	defer w.inFlight.Add(-1)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.expenses = append(w.expenses, req)
	return nil
}

func (w *fakeWriter) CreatePerson(ctx context.Context, name string) error {
	w.enter()
	defer w.inFlight.Add(-1)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.people = append(w.people, name)
	return nil
}

func (w *fakeWriter) calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.expenses) + len(w.people)
}

// fakeRefresher counts refreshes and installs a marker snapshot.
type fakeRefresher struct {
	store *snapshot.Store
	count atomic.Int32
	err   error
}

func (r *fakeRefresher) RefreshAll(ctx context.Context) (models.Snapshot, error) {
	r.count.Add(1)
	if r.err != nil {
		return models.Snapshot{}, r.err
	}
	current := r.store.Snapshot()
	return r.store.Replace(current), nil
}

type harness struct {
	store     *snapshot.Store
	writer    *fakeWriter
	refresher *fakeRefresher
	cmds      *Commands
}

func newHarness(people ...models.Person) *harness {
	store := snapshot.NewStore()
	store.Replace(models.Snapshot{People: people})
	writer := &fakeWriter{}
	refresher := &fakeRefresher{store: store}
	return &harness{
		store:     store,
		writer:    writer,
		refresher: refresher,
		cmds:      New(writer, refresher, store),
	}
}

var twoPeople = []models.Person{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}

func TestAddExpenseInvalidAmount(t *testing.T) {
	for _, amount := range []string{"abc", "", "   ", "-5", "12abc", "NaN"} {
		t.Run(amount, func(t *testing.T) {
			h := newHarness(twoPeople...)
			h.cmds.SetTitle("Dinner")
			h.cmds.SetAmount(amount)
			before := h.cmds.Draft()

			_, err := h.cmds.AddExpense(context.Background())

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.Equal(t, "invalid amount", err.Error())
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Equal(t, 0, h.writer.calls(), "no network call on invalid amount")
			assert.Equal(t, int32(0), h.refresher.count.Load())
			assert.Equal(t, before, h.cmds.Draft(), "draft must be left untouched")
		})
	}
}

func TestAddExpenseDefaultsToEveryone(t *testing.T) {
	h := newHarness(twoPeople...)
	h.cmds.SetAmount("100")

	res, err := h.cmds.AddExpense(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Refreshed)

	require.Len(t, h.writer.expenses, 1)
	req := h.writer.expenses[0]
	assert.Equal(t, "1,2", req.ParticipantIDs)
	assert.Equal(t, int64(1), req.PaidByID, "payer defaults to the first person")
	assert.Equal(t, DefaultTitle, req.Title)
	assert.True(t, req.Amount.Equal(decimal.NewFromInt(100)))
}

func TestAddExpenseWhitespaceParticipantsMeansEveryone(t *testing.T) {
	h := newHarness(twoPeople...)
	h.cmds.SetAmount("10")
	h.cmds.SetParticipants("   ")

	_, err := h.cmds.AddExpense(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1,2", h.writer.expenses[0].ParticipantIDs)
}

func TestAddExpenseExplicitFields(t *testing.T) {
	h := newHarness(twoPeople...)
	h.cmds.SetTitle("Groceries")
	h.cmds.SetAmount(" 42.50 ")
	h.cmds.SetPaidBy(2)
	h.cmds.SetParticipants(" 2,1")

	_, err := h.cmds.AddExpense(context.Background())
	require.NoError(t, err)

	req := h.writer.expenses[0]
	assert.Equal(t, "Groceries", req.Title)
	assert.Equal(t, "42.5", req.Amount.String())
	assert.Equal(t, int64(2), req.PaidByID)
	assert.Equal(t, " 2,1", req.ParticipantIDs, "participants are submitted verbatim")
}

func TestAddExpenseNoPeople(t *testing.T) {
	h := newHarness()
	h.cmds.SetAmount("10")

	_, err := h.cmds.AddExpense(context.Background())

	assert.ErrorIs(t, err, ErrNoPayer)
	assert.Equal(t, "no payer available", err.Error())
	assert.Equal(t, 0, h.writer.calls())
	assert.Equal(t, "10", h.cmds.Draft().Amount)
}

func TestAddExpenseNonPositivePayer(t *testing.T) {
	h := newHarness(twoPeople...)
	h.cmds.SetAmount("10")
	h.cmds.SetPaidBy(0)

	_, err := h.cmds.AddExpense(context.Background())
	assert.ErrorIs(t, err, ErrNoPayer)
	assert.Equal(t, 0, h.writer.calls())
}

func TestAddExpenseSuccessResetsDraftAndRefreshes(t *testing.T) {
	h := newHarness(twoPeople...)
	h.cmds.SetTitle("Dinner")
	h.cmds.SetAmount("80")
	h.cmds.SetPaidBy(2)
	versionBefore := h.store.Snapshot().Version

	res, err := h.cmds.AddExpense(context.Background())
	require.NoError(t, err)

	assert.True(t, h.cmds.Draft().IsEmpty())
	assert.Equal(t, int32(1), h.refresher.count.Load())
	assert.True(t, res.Refreshed)
	assert.Nil(t, res.RefreshErr)
	assert.Equal(t, versionBefore+1, res.Snapshot.Version)
}

func TestAddExpenseKeepsDraftEditedDuringWrite(t *testing.T) {
	h := newHarness(twoPeople...)
	h.cmds.SetTitle("Dinner")
	h.cmds.SetAmount("80")
	h.writer.onWrite = func() { h.cmds.SetTitle("Lunch") }

	res, err := h.cmds.AddExpense(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Refreshed)

	assert.Equal(t, "Dinner", h.writer.expenses[0].Title)
	d := h.cmds.Draft()
	assert.Equal(t, "Lunch", d.Title, "edits made during the write survive")
	assert.Equal(t, "80", d.Amount)
}

func TestAddExpenseWriteFailureKeepsDraft(t *testing.T) {
	h := newHarness(twoPeople...)
	h.writer.err = &ledger.ValidationError{Op: "create expense", StatusCode: 400, Message: "Payer not found"}
	h.cmds.SetAmount("80")
	h.cmds.SetParticipants("1,9")
	before := h.cmds.Draft()

	_, err := h.cmds.AddExpense(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrRejected)
	assert.Equal(t, "Payer not found", err.Error())
	assert.Equal(t, before, h.cmds.Draft())
	assert.Equal(t, int32(0), h.refresher.count.Load(), "failed write must not refresh")
}

func TestAddExpenseRefreshFailureStillSucceeds(t *testing.T) {
	h := newHarness(twoPeople...)
	h.refresher.err = errors.New("people down")
	h.cmds.SetAmount("5")
	before := h.store.Snapshot()

	res, err := h.cmds.AddExpense(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Refreshed)
	assert.EqualError(t, res.RefreshErr, "people down")
	assert.Equal(t, before, res.Snapshot)
	assert.True(t, h.cmds.Draft().IsEmpty(), "write succeeded so the draft is reset")
}

func TestAddPersonTriggersOneRefresh(t *testing.T) {
	h := newHarness(twoPeople...)

	res, err := h.cmds.AddPerson(context.Background(), "Kiran")
	require.NoError(t, err)

	assert.False(t, res.Skipped)
	assert.Equal(t, []string{"Kiran"}, h.writer.people)
	assert.Equal(t, int32(1), h.refresher.count.Load())
	assert.True(t, h.cmds.Draft().IsEmpty())
}

func TestAddPersonSubmitsNameVerbatim(t *testing.T) {
	h := newHarness(twoPeople...)

	_, err := h.cmds.AddPerson(context.Background(), " Kiran ")
	require.NoError(t, err)
	assert.Equal(t, []string{" Kiran "}, h.writer.people)
}

func TestAddPersonEmptyNameIsNoop(t *testing.T) {
	h := newHarness(twoPeople...)

	for _, name := range []string{"", "   "} {
		res, err := h.cmds.AddPerson(context.Background(), name)
		require.NoError(t, err)
		assert.True(t, res.Skipped)
	}

	assert.Equal(t, 0, h.writer.calls())
	assert.Equal(t, int32(0), h.refresher.count.Load())
}

func TestAddPersonFailure(t *testing.T) {
	h := newHarness()
	h.writer.err = &ledger.TransportError{Op: "create person", Err: errors.New("connection refused")}
	h.cmds.SetAmount("12")

	_, err := h.cmds.AddPerson(context.Background(), "Kiran")

	assert.ErrorIs(t, err, ledger.ErrTransport)
	assert.Equal(t, int32(0), h.refresher.count.Load())
	assert.Equal(t, "12", h.cmds.Draft().Amount, "unrelated draft is not touched")
}

func TestCommandsAreSerialized(t *testing.T) {
	h := newHarness(twoPeople...)
	h.writer.block = make(chan struct{})

	var wg sync.WaitGroup
	for _, name := range []string{"X", "Y", "Z"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_, err := h.cmds.AddPerson(context.Background(), name)
			assert.NoError(t, err)
		}(name)
	}

	time.Sleep(50 * time.Millisecond)
	close(h.writer.block)
	wg.Wait()

	assert.Equal(t, int32(1), h.writer.maxSeen.Load(), "commands must not overlap")
	assert.Len(t, h.writer.people, 3)
	assert.Equal(t, int32(3), h.refresher.count.Load())
}

func TestDraftMutation(t *testing.T) {
	h := newHarness()

	h.cmds.SetTitle("Lunch")
	h.cmds.SetAmount("12")
	h.cmds.SetPaidBy(3)
	h.cmds.SetParticipants("1,3")

	d := h.cmds.Draft()
	assert.Equal(t, "Lunch", d.Title)
	assert.Equal(t, "12", d.Amount)
	require.NotNil(t, d.PaidByID)
	assert.Equal(t, int64(3), *d.PaidByID)
	assert.Equal(t, "1,3", d.Participants)

	// the returned copy must not alias internal state
	*d.PaidByID = 99
	assert.Equal(t, int64(3), *h.cmds.Draft().PaidByID)

	h.cmds.ClearPaidBy()
	assert.Nil(t, h.cmds.Draft().PaidByID)

	h.cmds.ResetDraft()
	assert.True(t, h.cmds.Draft().IsEmpty())
}

func TestBuildExpenseRequestAmounts(t *testing.T) {
	snap := models.Snapshot{People: twoPeople}
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "0", want: "0"},
		{raw: "12", want: "12"},
		{raw: "12.345", want: "12.345"},
		{raw: "1e3", want: "1000"},
		{raw: "abc", wantErr: true},
		{raw: "-0.01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req, err := BuildExpenseRequest(models.DraftExpense{Amount: tt.raw}, snap)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.True(t, req.Amount.Equal(decimal.RequireFromString(tt.want)), "got %s", req.Amount)
		})
	}
}
