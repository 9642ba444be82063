package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitsync/internal/auth"
	"github.com/mmynk/splitsync/internal/config"
	"github.com/mmynk/splitsync/internal/controller"
	"github.com/mmynk/splitsync/internal/ledger"
	"github.com/mmynk/splitsync/internal/ledgerd"
	"github.com/mmynk/splitsync/internal/storage/sqlite"
)

const testSecret = "view-secret"

type testEnv struct {
	ctl    *controller.Controller
	server *httptest.Server
}

// setupTestServer starts a development ledger and a view API in front of a
// controller connected to it.
func setupTestServer(t *testing.T, secret string) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ledgerSrv, err := ledgerd.New(store, ledgerd.DefaultPrefix)
	require.NoError(t, err)
	ledgerTS := httptest.NewServer(ledgerSrv)
	t.Cleanup(ledgerTS.Close)

	cfg := config.Default()
	cfg.LedgerURL = ledgerTS.URL + ledgerd.DefaultPrefix
	cfg.ViewSecret = secret
	reg := prometheus.NewRegistry()
	ctl := controller.New(cfg, reg, ledger.WithHTTPClient(ledgerTS.Client()))

	ts := httptest.NewServer(NewMux(ctl, reg))
	t.Cleanup(ts.Close)
	return &testEnv{ctl: ctl, server: ts}
}

func (e *testEnv) client(token string) *DashboardClient {
	return NewDashboardClient(e.server.Client(), e.server.URL, token)
}

func mintToken(t *testing.T, canEdit bool) string {
	t.Helper()
	token, err := auth.NewJWTManager(testSecret, TokenTTL).Generate("test", canEdit)
	require.NoError(t, err)
	return token
}

func TestGetSnapshotBeforeRefresh(t *testing.T) {
	env := setupTestServer(t, "")

	resp, err := env.client("").GetSnapshot(context.Background())
	require.NoError(t, err)
	assert.Zero(t, resp.Snapshot.Version)
	assert.Empty(t, resp.Snapshot.Expenses)
	assert.Equal(t, "Kiran", resp.Summary.ShareName)
}

func TestAddPersonAndExpense(t *testing.T) {
	env := setupTestServer(t, "")
	client := env.client("")
	ctx := context.Background()

	res, err := client.AddPerson(ctx, "Kiran")
	require.NoError(t, err)
	assert.True(t, res.Refreshed)
	require.Len(t, res.Snapshot.Snapshot.People, 1)

	res, err = client.AddPerson(ctx, "   ")
	require.NoError(t, err)
	assert.True(t, res.Skipped)

	_, err = client.AddPerson(ctx, "Asha")
	require.NoError(t, err)

	title, amount := "Groceries", "40"
	draft, err := client.UpdateDraft(ctx, &UpdateDraftRequest{Title: &title, Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", draft.Draft.Title)

	res, err = client.AddExpense(ctx)
	require.NoError(t, err)
	snap := res.Snapshot
	require.Len(t, snap.Snapshot.Expenses, 1)
	assert.True(t, snap.Summary.Total.Equal(decimal.NewFromInt(40)))
	assert.True(t, snap.Summary.Share.Equal(decimal.NewFromInt(20)))

	got, err := client.GetDraft(ctx)
	require.NoError(t, err)
	assert.True(t, got.Draft.IsEmpty())
}

func TestErrorCodes(t *testing.T) {
	env := setupTestServer(t, "")
	client := env.client("")
	ctx := context.Background()

	// No people yet.
	amount := "10"
	_, err := client.UpdateDraft(ctx, &UpdateDraftRequest{Amount: &amount})
	require.NoError(t, err)
	_, err = client.AddExpense(ctx)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = client.AddPerson(ctx, "Kiran")
	require.NoError(t, err)

	bad := "abc"
	_, err = client.UpdateDraft(ctx, &UpdateDraftRequest{Amount: &bad})
	require.NoError(t, err)
	_, err = client.AddExpense(ctx)
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr))
	assert.Equal(t, connect.CodeInvalidArgument, connectErr.Code())
	assert.Equal(t, "invalid amount", connectErr.Message())

	participants := "1,42"
	_, err = client.UpdateDraft(ctx, &UpdateDraftRequest{Amount: &amount, Participants: &participants})
	require.NoError(t, err)
	_, err = client.AddExpense(ctx)
	require.True(t, errors.As(err, &connectErr))
	assert.Equal(t, connect.CodeFailedPrecondition, connectErr.Code())
	assert.Equal(t, "unknown person: 42", connectErr.Message())

	// The rejected draft is kept.
	draft, err := client.GetDraft(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1,42", draft.Draft.Participants)
}

func TestRefreshUnavailable(t *testing.T) {
	cfg := config.Default()
	dead := httptest.NewServer(nil)
	cfg.LedgerURL = dead.URL
	dead.Close()

	ctl := controller.New(cfg, nil)
	ts := httptest.NewServer(NewMux(ctl, nil))
	defer ts.Close()

	_, err := NewDashboardClient(ts.Client(), ts.URL, "").Refresh(context.Background())
	assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))
}

func TestWatchSnapshot(t *testing.T) {
	env := setupTestServer(t, "")
	client := env.client("")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := client.WatchSnapshot(ctx)
	require.NoError(t, err)
	defer stream.Close()

	require.True(t, stream.Receive(), "initial snapshot: %v", stream.Err())
	assert.Zero(t, stream.Msg().Snapshot.Version)

	_, err = client.AddPerson(ctx, "Kiran")
	require.NoError(t, err)

	require.True(t, stream.Receive(), "update: %v", stream.Err())
	assert.Len(t, stream.Msg().Snapshot.People, 1)
	assert.Positive(t, stream.Msg().Snapshot.Version)
}

func TestAuth(t *testing.T) {
	env := setupTestServer(t, testSecret)
	ctx := context.Background()

	t.Run("missing token", func(t *testing.T) {
		_, err := env.client("").GetSnapshot(ctx)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("bad token", func(t *testing.T) {
		_, err := env.client("nope").GetSnapshot(ctx)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("read-only token can view", func(t *testing.T) {
		_, err := env.client(mintToken(t, false)).GetSnapshot(ctx)
		assert.NoError(t, err)
	})

	t.Run("read-only token cannot edit", func(t *testing.T) {
		_, err := env.client(mintToken(t, false)).AddPerson(ctx, "Kiran")
		assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
		assert.Empty(t, env.ctl.Snapshot().People)
	})

	t.Run("stream requires token", func(t *testing.T) {
		stream, err := env.client("").WatchSnapshot(ctx)
		if err == nil {
			defer stream.Close()
			require.False(t, stream.Receive())
			err = stream.Err()
		}
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("edit token can edit", func(t *testing.T) {
		res, err := env.client(mintToken(t, true)).AddPerson(ctx, "Kiran")
		require.NoError(t, err)
		assert.Len(t, res.Snapshot.Snapshot.People, 1)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	env := setupTestServer(t, testSecret)
	_, err := env.ctl.Refresh.RefreshAll(context.Background())
	require.NoError(t, err)

	resp, err := env.server.Client().Get(env.server.URL + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))

	resp, err = env.server.Client().Get(env.server.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `splitsync_refresh_total{outcome="ok"} 1`)
}

func TestPlainJSONPost(t *testing.T) {
	env := setupTestServer(t, "")

	resp, err := env.server.Client().Post(
		env.server.URL+DashboardServiceAddPersonProcedure,
		"application/json",
		strings.NewReader(`{"name":"Kiran"}`),
	)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out MutationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Refreshed)
	require.Len(t, out.Snapshot.Snapshot.People, 1)
	assert.Equal(t, "Kiran", out.Snapshot.Snapshot.People[0].Name)
}
