package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mutationMessage struct {
	version uint64
	outcome string
}

func (m mutationMessage) SnapshotVersion() uint64 { return m.version }
func (m mutationMessage) MutationOutcome() string { return m.outcome }

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLoggingInterceptorLogsSnapshotVersionAndOutcome(t *testing.T) {
	logs := captureLogs(t)
	call := LoggingInterceptor().WrapUnary(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return connect.NewResponse(&mutationMessage{version: 7, outcome: "stale"}), nil
	})

	ctx := context.WithValue(context.Background(), ViewerKey, "dashboard")
	_, err := call(ctx, connect.NewRequest(&struct{}{}))
	require.NoError(t, err)

	out := logs.String()
	assert.Contains(t, out, `"msg":"RPC ok"`)
	assert.Contains(t, out, `"snapshot_version":7`)
	assert.Contains(t, out, `"outcome":"stale"`)
	assert.Contains(t, out, `"viewer":"dashboard"`)
}

func TestLoggingInterceptorLogsErrors(t *testing.T) {
	logs := captureLogs(t)
	call := LoggingInterceptor().WrapUnary(func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("invalid amount"))
	})

	_, err := call(context.Background(), connect.NewRequest(&struct{}{}))
	require.Error(t, err)

	out := logs.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"error":"invalid amount"`)
	assert.NotContains(t, out, "snapshot_version")
}
