package service

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// DashboardClient calls a running view API.
type DashboardClient struct {
	getSnapshot   *connect.Client[GetSnapshotRequest, SnapshotResponse]
	refresh       *connect.Client[RefreshRequest, SnapshotResponse]
	watchSnapshot *connect.Client[WatchSnapshotRequest, SnapshotResponse]
	getDraft      *connect.Client[GetDraftRequest, DraftResponse]
	updateDraft   *connect.Client[UpdateDraftRequest, DraftResponse]
	addExpense    *connect.Client[AddExpenseRequest, MutationResponse]
	addPerson     *connect.Client[AddPersonRequest, MutationResponse]
	token         string
}

// NewDashboardClient creates a client for the view API at baseURL. A
// non-empty token is sent as a bearer token on every call.
func NewDashboardClient(httpClient connect.HTTPClient, baseURL, token string, opts ...connect.ClientOption) *DashboardClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &DashboardClient{
		getSnapshot:   connect.NewClient[GetSnapshotRequest, SnapshotResponse](httpClient, baseURL+DashboardServiceGetSnapshotProcedure, opts...),
		refresh:       connect.NewClient[RefreshRequest, SnapshotResponse](httpClient, baseURL+DashboardServiceRefreshProcedure, opts...),
		watchSnapshot: connect.NewClient[WatchSnapshotRequest, SnapshotResponse](httpClient, baseURL+DashboardServiceWatchSnapshotProcedure, opts...),
		getDraft:      connect.NewClient[GetDraftRequest, DraftResponse](httpClient, baseURL+DashboardServiceGetDraftProcedure, opts...),
		updateDraft:   connect.NewClient[UpdateDraftRequest, DraftResponse](httpClient, baseURL+DashboardServiceUpdateDraftProcedure, opts...),
		addExpense:    connect.NewClient[AddExpenseRequest, MutationResponse](httpClient, baseURL+DashboardServiceAddExpenseProcedure, opts...),
		addPerson:     connect.NewClient[AddPersonRequest, MutationResponse](httpClient, baseURL+DashboardServiceAddPersonProcedure, opts...),
		token:         token,
	}
}

func newRequest[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	return req
}

// GetSnapshot calls DashboardService.GetSnapshot.
func (c *DashboardClient) GetSnapshot(ctx context.Context) (*SnapshotResponse, error) {
	resp, err := c.getSnapshot.CallUnary(ctx, newRequest(&GetSnapshotRequest{}, c.token))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// Refresh calls DashboardService.Refresh.
func (c *DashboardClient) Refresh(ctx context.Context) (*SnapshotResponse, error) {
	resp, err := c.refresh.CallUnary(ctx, newRequest(&RefreshRequest{}, c.token))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// WatchSnapshot calls DashboardService.WatchSnapshot. The caller must close
// the returned stream.
func (c *DashboardClient) WatchSnapshot(ctx context.Context) (*connect.ServerStreamForClient[SnapshotResponse], error) {
	return c.watchSnapshot.CallServerStream(ctx, newRequest(&WatchSnapshotRequest{}, c.token))
}

// GetDraft calls DashboardService.GetDraft.
func (c *DashboardClient) GetDraft(ctx context.Context) (*DraftResponse, error) {
	resp, err := c.getDraft.CallUnary(ctx, newRequest(&GetDraftRequest{}, c.token))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// UpdateDraft calls DashboardService.UpdateDraft.
func (c *DashboardClient) UpdateDraft(ctx context.Context, req *UpdateDraftRequest) (*DraftResponse, error) {
	resp, err := c.updateDraft.CallUnary(ctx, newRequest(req, c.token))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// AddExpense calls DashboardService.AddExpense.
func (c *DashboardClient) AddExpense(ctx context.Context) (*MutationResponse, error) {
	resp, err := c.addExpense.CallUnary(ctx, newRequest(&AddExpenseRequest{}, c.token))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// AddPerson calls DashboardService.AddPerson.
func (c *DashboardClient) AddPerson(ctx context.Context, name string) (*MutationResponse, error) {
	resp, err := c.addPerson.CallUnary(ctx, newRequest(&AddPersonRequest{Name: name}, c.token))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}
