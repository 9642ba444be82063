// Package service serves the local view API: a Connect service exposing the
// controller's snapshot, draft and mutation commands to a view layer.
package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitsync/internal/commands"
	"github.com/mmynk/splitsync/internal/controller"
	"github.com/mmynk/splitsync/internal/models"
)

// DashboardService implements the view API on top of a Controller.
type DashboardService struct {
	ctl *controller.Controller
}

// NewDashboardService creates a DashboardService for ctl.
func NewDashboardService(ctl *controller.Controller) *DashboardService {
	return &DashboardService{ctl: ctl}
}

func (s *DashboardService) snapshotResponse(snap models.Snapshot) *SnapshotResponse {
	return &SnapshotResponse{Snapshot: snap, Summary: s.ctl.Summarize(snap)}
}

// GetSnapshot returns the current snapshot without contacting the ledger.
func (s *DashboardService) GetSnapshot(
	ctx context.Context,
	req *connect.Request[GetSnapshotRequest],
) (*connect.Response[SnapshotResponse], error) {
	return connect.NewResponse(s.snapshotResponse(s.ctl.Snapshot())), nil
}

// Refresh runs a full refresh and returns the new snapshot. On failure the
// previous snapshot is kept and Unavailable is returned.
func (s *DashboardService) Refresh(
	ctx context.Context,
	req *connect.Request[RefreshRequest],
) (*connect.Response[SnapshotResponse], error) {
	snap, err := s.ctl.Refresh.RefreshAll(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(s.snapshotResponse(snap)), nil
}

// WatchSnapshot streams the current snapshot and then every replacement
// until the client goes away.
func (s *DashboardService) WatchSnapshot(
	ctx context.Context,
	req *connect.Request[WatchSnapshotRequest],
	stream *connect.ServerStream[SnapshotResponse],
) error {
	updates, cancel := s.ctl.Store.Subscribe()
	defer cancel()

	if err := stream.Send(s.snapshotResponse(s.ctl.Snapshot())); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			if err := stream.Send(s.snapshotResponse(snap)); err != nil {
				slog.Debug("WatchSnapshot send failed", "error", err)
				return err
			}
		}
	}
}

// GetDraft returns the current draft expense.
func (s *DashboardService) GetDraft(
	ctx context.Context,
	req *connect.Request[GetDraftRequest],
) (*connect.Response[DraftResponse], error) {
	return connect.NewResponse(&DraftResponse{Draft: s.ctl.Commands.Draft()}), nil
}

// UpdateDraft applies the set fields to the draft in one step.
func (s *DashboardService) UpdateDraft(
	ctx context.Context,
	req *connect.Request[UpdateDraftRequest],
) (*connect.Response[DraftResponse], error) {
	m := req.Msg
	draft := s.ctl.Commands.UpdateDraft(func(d *models.DraftExpense) {
		if m.Reset {
			*d = models.DraftExpense{}
		}
		if m.Title != nil {
			d.Title = *m.Title
		}
		if m.Amount != nil {
			d.Amount = *m.Amount
		}
		if m.ClearPaidBy {
			d.PaidByID = nil
		}
		if m.PaidByID != nil {
			id := *m.PaidByID
			d.PaidByID = &id
		}
		if m.Participants != nil {
			d.Participants = *m.Participants
		}
	})
	return connect.NewResponse(&DraftResponse{Draft: draft}), nil
}

// AddExpense submits the current draft.
func (s *DashboardService) AddExpense(
	ctx context.Context,
	req *connect.Request[AddExpenseRequest],
) (*connect.Response[MutationResponse], error) {
	res, err := s.ctl.Commands.AddExpense(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(s.mutationResponse(res)), nil
}

// AddPerson registers a participant. A blank name is reported as skipped.
func (s *DashboardService) AddPerson(
	ctx context.Context,
	req *connect.Request[AddPersonRequest],
) (*connect.Response[MutationResponse], error) {
	res, err := s.ctl.Commands.AddPerson(ctx, req.Msg.Name)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(s.mutationResponse(res)), nil
}

func (s *DashboardService) mutationResponse(res commands.Result) *MutationResponse {
	resp := &MutationResponse{
		Skipped:   res.Skipped,
		Refreshed: res.Refreshed,
		Snapshot:  *s.snapshotResponse(res.Snapshot),
	}
	if res.RefreshErr != nil {
		resp.RefreshError = res.RefreshErr.Error()
	}
	return resp
}
