package service

import (
	"github.com/mmynk/splitsync/internal/controller"
	"github.com/mmynk/splitsync/internal/models"
)

type GetSnapshotRequest struct{}

type RefreshRequest struct{}

type WatchSnapshotRequest struct{}

// SnapshotResponse carries a snapshot and its derived values.
type SnapshotResponse struct {
	Snapshot models.Snapshot   `json:"snapshot"`
	Summary  controller.Summary `json:"summary"`
}

type GetDraftRequest struct{}

// UpdateDraftRequest sets the non-nil fields of the draft.
type UpdateDraftRequest struct {
	Title        *string `json:"title,omitempty"`
	Amount       *string `json:"amount,omitempty"`
	PaidByID     *int64  `json:"paidById,omitempty"`
	ClearPaidBy  bool    `json:"clearPaidBy,omitempty"`
	Participants *string `json:"participants,omitempty"`
	Reset        bool    `json:"reset,omitempty"`
}

type DraftResponse struct {
	Draft models.DraftExpense `json:"draft"`
}

// AddExpenseRequest submits the current draft.
type AddExpenseRequest struct{}

type AddPersonRequest struct {
	Name string `json:"name"`
}

// MutationResponse reports a command that did not fail.
type MutationResponse struct {
	Skipped bool `json:"skipped,omitempty"`
	// Refreshed is false when the write succeeded but the trailing refresh
	// did not; RefreshError then holds the reason.
	Refreshed    bool             `json:"refreshed"`
	RefreshError string           `json:"refreshError,omitempty"`
	Snapshot     SnapshotResponse `json:"snapshot"`
}

// SnapshotVersion returns the version of the carried snapshot.
func (r SnapshotResponse) SnapshotVersion() uint64 { return r.Snapshot.Version }

// SnapshotVersion returns the version of the snapshot after the command.
func (r MutationResponse) SnapshotVersion() uint64 { return r.Snapshot.Snapshot.Version }

// MutationOutcome summarizes the command for logs: skipped, refreshed or stale.
func (r MutationResponse) MutationOutcome() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Refreshed:
		return "refreshed"
	default:
		return "stale"
	}
}
